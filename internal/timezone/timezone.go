package timezone

import (
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

// Fare API departure times are wall-clock times at the origin airport with no
// offset. The zone table below covers the low-cost network; unknown airports
// fall back to UTC, which keeps the wall-clock fields intact.
var airportZones = map[string]string{
	// France
	"BVA": "Europe/Paris", // Paris - Beauvais
	"CDG": "Europe/Paris", // Paris - Charles de Gaulle
	"ORY": "Europe/Paris", // Paris - Orly
	"MRS": "Europe/Paris", // Marseille
	"NCE": "Europe/Paris", // Nice
	"TLS": "Europe/Paris", // Toulouse
	"BOD": "Europe/Paris", // Bordeaux
	"NTE": "Europe/Paris", // Nantes
	"LIL": "Europe/Paris", // Lille

	// Iberia
	"MAD": "Europe/Madrid",   // Madrid
	"BCN": "Europe/Madrid",   // Barcelona
	"AGP": "Europe/Madrid",   // Malaga
	"ALC": "Europe/Madrid",   // Alicante
	"PMI": "Europe/Madrid",   // Palma de Mallorca
	"VLC": "Europe/Madrid",   // Valencia
	"SVQ": "Europe/Madrid",   // Seville
	"TFS": "Atlantic/Canary", // Tenerife South
	"LPA": "Atlantic/Canary", // Gran Canaria
	"OPO": "Europe/Lisbon",   // Porto
	"LIS": "Europe/Lisbon",   // Lisbon
	"FAO": "Europe/Lisbon",   // Faro

	// Italy
	"CIA": "Europe/Rome", // Rome - Ciampino
	"FCO": "Europe/Rome", // Rome - Fiumicino
	"BGY": "Europe/Rome", // Milan - Bergamo
	"NAP": "Europe/Rome", // Naples
	"BLQ": "Europe/Rome", // Bologna
	"PSA": "Europe/Rome", // Pisa
	"CTA": "Europe/Rome", // Catania
	"PMO": "Europe/Rome", // Palermo
	"BRI": "Europe/Rome", // Bari
	"VCE": "Europe/Rome", // Venice

	// British Isles
	"STN": "Europe/London", // London - Stansted
	"LTN": "Europe/London", // London - Luton
	"MAN": "Europe/London", // Manchester
	"EDI": "Europe/London", // Edinburgh
	"DUB": "Europe/Dublin", // Dublin

	// Central and eastern Europe
	"CRL": "Europe/Brussels", // Brussels - Charleroi
	"EIN": "Europe/Amsterdam",
	"BER": "Europe/Berlin",   // Berlin
	"VIE": "Europe/Vienna",   // Vienna
	"BUD": "Europe/Budapest", // Budapest
	"PRG": "Europe/Prague",   // Prague
	"KRK": "Europe/Warsaw",   // Krakow
	"WMI": "Europe/Warsaw",   // Warsaw - Modlin
	"OTP": "Europe/Bucharest",
	"SOF": "Europe/Sofia",
	"ZAG": "Europe/Zagreb",

	// Eastern Mediterranean and North Africa
	"ATH": "Europe/Athens",
	"SKG": "Europe/Athens", // Thessaloniki
	"MLA": "Europe/Malta",
	"PFO": "Asia/Nicosia", // Paphos
	"RAK": "Africa/Casablanca",
	"FEZ": "Africa/Casablanca",
}

var (
	locMu     sync.RWMutex
	locations = map[string]*time.Location{}
)

// GetZoneByAirport returns the IANA zone name for an airport, UTC when unknown.
func GetZoneByAirport(code string) string {
	if tz, ok := airportZones[strings.ToUpper(code)]; ok {
		return tz
	}
	return "UTC"
}

func GetLocationByAirport(code string) *time.Location {
	name := GetZoneByAirport(code)

	locMu.RLock()
	loc, ok := locations[name]
	locMu.RUnlock()
	if ok {
		return loc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.UTC
	}

	locMu.Lock()
	locations[name] = loc
	locMu.Unlock()
	return loc
}

// ParseLocal parses a departure timestamp. Strings carrying an offset keep
// it; naive strings are interpreted in the airport's zone.
func ParseLocal(timeStr, airportCode string) (time.Time, error) {
	for _, format := range []string{time.RFC3339, "2006-01-02T15:04:05-0700"} {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}

	loc := GetLocationByAirport(airportCode)
	for _, format := range []string{
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
	} {
		if t, err := time.ParseInLocation(format, timeStr, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   timeStr,
		Message: "unable to parse time string",
	}
}

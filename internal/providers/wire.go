package providers

import (
	"strings"

	"github.com/dharmasatrya/flightwatcher/internal/logging"
	"github.com/dharmasatrya/flightwatcher/internal/models"
	"github.com/dharmasatrya/flightwatcher/internal/timezone"
)

// fareResponse mirrors the oneWayFares payload. Only the fields we map are declared.
type fareResponse struct {
	Fares []fareItem `json:"fares"`
}

type fareItem struct {
	Outbound fareLeg `json:"outbound"`
}

type fareLeg struct {
	DepartureAirport fareAirport `json:"departureAirport"`
	ArrivalAirport   fareAirport `json:"arrivalAirport"`
	DepartureDate    string      `json:"departureDate"`
	ArrivalDate      string      `json:"arrivalDate"`
	Price            farePrice   `json:"price"`
	FlightNumber     string      `json:"flightNumber"`
}

type fareAirport struct {
	IataCode    string `json:"iataCode"`
	Name        string `json:"name"`
	CountryName string `json:"countryName"`
}

type farePrice struct {
	Value        float64 `json:"value"`
	CurrencyCode string  `json:"currencyCode"`
}

func (a fareAirport) fullName() string {
	if a.CountryName == "" {
		return a.Name
	}
	return a.Name + ", " + a.CountryName
}

// toFlights maps the payload, dropping entries whose departure cannot be parsed.
func (r fareResponse) toFlights(source string) []models.Flight {
	flights := make([]models.Flight, 0, len(r.Fares))

	for _, fare := range r.Fares {
		leg := fare.Outbound
		origin := strings.ToUpper(leg.DepartureAirport.IataCode)

		departure, err := timezone.ParseLocal(leg.DepartureDate, origin)
		if err != nil {
			logging.Debug().Str("source", source).Str("departure", leg.DepartureDate).Err(err).Msg("skipping fare with unparseable departure")
			continue
		}

		flights = append(flights, models.Flight{
			FlightNumber:    formatFlightNumber(leg.FlightNumber),
			Origin:          origin,
			OriginFull:      leg.DepartureAirport.fullName(),
			Destination:     strings.ToUpper(leg.ArrivalAirport.IataCode),
			DestinationFull: leg.ArrivalAirport.fullName(),
			DepartureTime:   departure,
			Price:           leg.Price.Value,
			Currency:        leg.Price.CurrencyCode,
		})
	}

	return flights
}

// formatFlightNumber turns "FR1234" into "FR 1234".
func formatFlightNumber(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 2 || s[2] == ' ' {
		return s
	}
	return s[:2] + " " + s[2:]
}

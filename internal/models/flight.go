package models

import "time"

// Flight is one priced one-way flight as returned by the fare source.
type Flight struct {
	FlightNumber    string    `json:"flightNumber"`
	Origin          string    `json:"origin"`
	OriginFull      string    `json:"originFull"`
	Destination     string    `json:"destination"`
	DestinationFull string    `json:"destinationFull"`
	DepartureTime   time.Time `json:"departureTime"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
}

// Trip pairs an outbound flight with the cheapest return found for it.
type Trip struct {
	Outbound        Flight  `json:"aller"`
	Return          Flight  `json:"retour"`
	TotalPrice      float64 `json:"prix_total"`
	DestinationCode string  `json:"destination_code"`
}

// TripIdentity identifies a trip across scans. Price is deliberately not
// part of it: the same trip may be found again at a different price.
type TripIdentity struct {
	DestinationCode string
	OutboundAt      string
	ReturnAt        string
}

func (t Trip) Identity() TripIdentity {
	return TripIdentity{
		DestinationCode: t.DestinationCode,
		OutboundAt:      t.Outbound.DepartureTime.UTC().Format(time.RFC3339),
		ReturnAt:        t.Return.DepartureTime.UTC().Format(time.RFC3339),
	}
}

type EnrichedTrip struct {
	Trip
	AveragePrice    *float64 `json:"prix_moyen_30j,omitempty"`
	DiscountPercent *float64 `json:"reduction_pct,omitempty"`
	GoodDeal        bool     `json:"bon_plan"`
}

type CacheEntry struct {
	Key       string    `json:"cache_key"`
	Trips     []Trip    `json:"results"`
	ExpiresAt time.Time `json:"expires_at"`
	HitCount  int64     `json:"hit_count"`
}

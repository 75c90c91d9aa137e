package models

import "time"

type UserProfile struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	HomeAirport  string     `json:"home_airport,omitempty"`
	ReferralCode string     `json:"referral_code,omitempty"`
	PlanID       string     `json:"plan_id,omitempty"`
	IsAdmin      bool       `json:"is_admin"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActive   *time.Time `json:"last_active,omitempty"`
}

type UserStats struct {
	SearchesCount  int `json:"searches_count"`
	FavoritesCount int `json:"favorites_count"`
	EventsCount    int `json:"search_events_count"`
}

type UserDetails struct {
	UserProfile
	Stats UserStats `json:"stats"`
}

type SavedSearch struct {
	ID                   string      `json:"id"`
	UserID               string      `json:"user_id"`
	Name                 string      `json:"name"`
	Request              ScanRequest `json:"request"`
	AutoCheckEnabled     bool        `json:"auto_check_enabled"`
	CheckIntervalSeconds int         `json:"check_interval_seconds"`
	LastCheckedAt        *time.Time  `json:"last_checked_at,omitempty"`
	LastCheckResults     []Trip      `json:"last_check_results,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	LastUsed             *time.Time  `json:"last_used,omitempty"`
}

type Favorite struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	Trip          Trip        `json:"trip"`
	SearchRequest ScanRequest `json:"search_request"`
	IsArchived    bool        `json:"is_archived"`
	IsAvailable   bool        `json:"is_still_valid"`
	CreatedAt     time.Time   `json:"created_at"`
}

type Plan struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PriceMonthly float64   `json:"price_monthly"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type PlanFeature struct {
	PlanID      string `json:"plan_id"`
	FeatureName string `json:"feature_name"`
	Enabled     bool   `json:"enabled"`
	LimitValue  *int   `json:"limit_value,omitempty"`
}

type AnalyticsEvent struct {
	ID              string            `json:"id"`
	UserID          *string           `json:"user_id,omitempty"`
	UserEmail       *string           `json:"user_email,omitempty"`
	EventType       string            `json:"event_type"`
	DestinationCode string            `json:"destination_code,omitempty"`
	PartnerID       string            `json:"partner_id,omitempty"`
	PartnerName     string            `json:"partner_name,omitempty"`
	TotalPrice      *float64          `json:"total_price,omitempty"`
	SessionID       string            `json:"session_id,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// PriceRecord is one observed leg price kept for trailing averages.
type PriceRecord struct {
	DepartureAirport string    `json:"departure_airport"`
	DestinationCode  string    `json:"destination_code"`
	FlightDate       string    `json:"flight_date"`
	Price            float64   `json:"price"`
	Currency         string    `json:"currency"`
	FlightNumber     string    `json:"flight_number"`
	Source           string    `json:"source"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// PriceRecordsFromTrips flattens trips into one record per leg.
func PriceRecordsFromTrips(trips []Trip, source string, now time.Time) []PriceRecord {
	records := make([]PriceRecord, 0, len(trips)*2)
	for _, t := range trips {
		for _, f := range []Flight{t.Outbound, t.Return} {
			records = append(records, PriceRecord{
				DepartureAirport: f.Origin,
				DestinationCode:  f.Destination,
				FlightDate:       f.DepartureTime.Format(DateLayout),
				Price:            f.Price,
				Currency:         f.Currency,
				FlightNumber:     f.FlightNumber,
				Source:           source,
				RecordedAt:       now,
			})
		}
	}
	return records
}

type ListFilter struct {
	Page     int
	PageSize int
	UserID   string
	Email    string
	Airport  string
	Partner  string
	Type     string
	From     *time.Time
	To       *time.Time
}

// Normalize clamps paging to sane bounds.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 200 {
		f.PageSize = 50
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

package models

type ScanResponse struct {
	Results  []Trip         `json:"resultats"`
	Queries  int            `json:"nombre_requetes"`
	Message  string         `json:"message"`
	CacheHit bool           `json:"cache_hit"`
	Deals    []EnrichedTrip `json:"bons_plans,omitempty"`
}

type AutoCheckResponse struct {
	SearchID       string `json:"search_id"`
	CurrentResults []Trip `json:"current_results"`
	NewResults     []Trip `json:"new_results"`
	Queries        int    `json:"nombre_requetes"`
	Message        string `json:"message"`
}

type Destination struct {
	Code            string `json:"code"`
	Name            string `json:"nom"`
	Country         string `json:"pays"`
	DestinationFull string `json:"destinationFull"`
}

type DestinationsResponse struct {
	Destinations map[string][]Destination `json:"destinations"`
	Airport      string                   `json:"aeroport"`
}

type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AirportCount struct {
	Airport string `json:"airport"`
	Count   int    `json:"count"`
}

type SearchStats struct {
	TotalSearches     int            `json:"total_searches"`
	AutoCheckEnabled  int            `json:"auto_check_enabled"`
	RecentSearches    int            `json:"recent_searches"`
	SearchesByDay     []DailyCount   `json:"searches_by_day"`
	SearchesByAirport []AirportCount `json:"searches_by_airport"`
}

type PartnerCount struct {
	PartnerID   string `json:"partner_id"`
	PartnerName string `json:"partner_name"`
	Count       int    `json:"count"`
}

type EventStats struct {
	TotalEvents         int            `json:"total_events"`
	EventsByDay         []DailyCount   `json:"events_by_day"`
	PartnerDistribution []PartnerCount `json:"partner_distribution"`
	AveragePrice        float64        `json:"avg_price"`
	UniqueUsers         int            `json:"unique_users"`
	UniqueSessions      int            `json:"unique_sessions"`
}

type Settings struct {
	Plans          []Plan                   `json:"plans"`
	FeaturesByPlan map[string][]PlanFeature `json:"features_by_plan"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

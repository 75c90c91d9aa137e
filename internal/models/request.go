package models

import (
	"sort"
	"strings"
	"time"
)

const (
	DateLayout       = "2006-01-02"
	TimeOfDayLayout  = "15:04"
	DefaultTimeMin   = "00:00"
	DefaultTimeMax   = "23:59"
	DefaultAirport   = "BVA"
	DefaultBudgetMax = 200
	DefaultLimit     = 50
)

// DateWindow is a calendar date with an inclusive departure time-of-day range.
type DateWindow struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeMin string `json:"heure_min,omitempty" validate:"omitempty,datetime=15:04"`
	TimeMax string `json:"heure_max,omitempty" validate:"omitempty,datetime=15:04"`
}

func (w DateWindow) Day() (time.Time, error) {
	return time.Parse(DateLayout, w.Date)
}

func (w DateWindow) withDefaults() DateWindow {
	if w.TimeMin == "" {
		w.TimeMin = DefaultTimeMin
	}
	if w.TimeMax == "" {
		w.TimeMax = DefaultTimeMax
	}
	return w
}

type ScanRequest struct {
	DepartureAirport     string       `json:"aeroport_depart,omitempty" validate:"omitempty,len=3,alpha"`
	OutboundDates        []DateWindow `json:"dates_depart" validate:"dive"`
	ReturnDates          []DateWindow `json:"dates_retour" validate:"dive"`
	BudgetMax            int          `json:"budget_max,omitempty" validate:"gte=0"`
	OutboundLimit        int          `json:"limite_allers,omitempty" validate:"gte=0"`
	ExcludedDestinations []string     `json:"destinations_exclues,omitempty" validate:"dive,len=3,alpha"`
	// IncludedDestinations is nil when every destination is allowed.
	IncludedDestinations *[]string `json:"destinations_incluses,omitempty" validate:"omitempty,dive,len=3,alpha"`
}

// ScanDefaults are the values applied to absent request fields.
type ScanDefaults struct {
	Airport   string
	BudgetMax int
	Limit     int
}

func DefaultScanDefaults() ScanDefaults {
	return ScanDefaults{Airport: DefaultAirport, BudgetMax: DefaultBudgetMax, Limit: DefaultLimit}
}

// Normalize returns a copy with defaults applied and airport codes upper-cased.
// Destination lists are upper-cased, de-duplicated and sorted so that two
// requests differing only in list order normalize identically.
func (r ScanRequest) Normalize(d ScanDefaults) ScanRequest {
	out := r

	out.DepartureAirport = strings.ToUpper(strings.TrimSpace(r.DepartureAirport))
	if out.DepartureAirport == "" {
		out.DepartureAirport = d.Airport
	}
	if out.BudgetMax <= 0 {
		out.BudgetMax = d.BudgetMax
	}
	if out.OutboundLimit <= 0 {
		out.OutboundLimit = d.Limit
	}

	out.OutboundDates = make([]DateWindow, len(r.OutboundDates))
	for i, w := range r.OutboundDates {
		out.OutboundDates[i] = w.withDefaults()
	}
	out.ReturnDates = make([]DateWindow, len(r.ReturnDates))
	for i, w := range r.ReturnDates {
		out.ReturnDates[i] = w.withDefaults()
	}

	out.ExcludedDestinations = normalizeCodes(r.ExcludedDestinations)
	if r.IncludedDestinations != nil {
		included := normalizeCodes(*r.IncludedDestinations)
		out.IncludedDestinations = &included
	}

	return out
}

func normalizeCodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	result := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		result = append(result, c)
	}
	sort.Strings(result)
	return result
}

type AutoCheckRequest struct {
	ScanRequest
	SearchID        string `json:"search_id"`
	PreviousResults []Trip `json:"previous_results,omitempty"`
}

type SavedSearchRequest struct {
	Name    string      `json:"name" validate:"required,max=120"`
	Request ScanRequest `json:"request" validate:"required"`
}

type FavoriteRequest struct {
	Trip          Trip        `json:"trip" validate:"required"`
	SearchRequest ScanRequest `json:"search_request"`
}

type ProfileUpdate struct {
	FullName     *string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	HomeAirport  *string `json:"home_airport,omitempty" validate:"omitempty,len=3,alpha"`
	ReferralCode *string `json:"referral_code,omitempty" validate:"omitempty,max=16"`
}

// AdminUserUpdate carries the fields an administrator may change. Admin
// rights come from the configured allow-list and cannot be granted here.
type AdminUserUpdate struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	PlanID   *string `json:"plan_id,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (u AdminUserUpdate) Empty() bool {
	return u.FullName == nil && u.PlanID == nil && u.IsActive == nil
}

type SettingsUpdate struct {
	PlanID   string                   `json:"plan_id" validate:"required"`
	Features map[string]FeatureToggle `json:"features" validate:"required"`
}

type FeatureToggle struct {
	Enabled    bool `json:"enabled"`
	LimitValue *int `json:"limit_value,omitempty"`
}

type PasswordVerification struct {
	Password string `json:"password" validate:"required"`
}

type EventRequest struct {
	EventType       string            `json:"event_type" validate:"required,oneof=search booking_click favorite_added share"`
	DestinationCode string            `json:"destination_code,omitempty" validate:"omitempty,len=3,alpha"`
	PartnerID       string            `json:"partner_id,omitempty"`
	PartnerName     string            `json:"partner_name,omitempty"`
	TotalPrice      *float64          `json:"total_price,omitempty" validate:"omitempty,gte=0"`
	SessionID       string            `json:"session_id,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

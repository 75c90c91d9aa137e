package filter

import (
	"sort"
	"time"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

// Window is a DateWindow resolved to comparable values.
type Window struct {
	Date    string
	MinTime int
	MaxTime int
}

// ParseWindow resolves a DateWindow. Missing bounds take the day defaults.
func ParseWindow(w models.DateWindow) (Window, error) {
	if _, err := w.Day(); err != nil {
		return Window{}, err
	}

	minStr, maxStr := w.TimeMin, w.TimeMax
	if minStr == "" {
		minStr = models.DefaultTimeMin
	}
	if maxStr == "" {
		maxStr = models.DefaultTimeMax
	}

	minTime, err := parseTimeOfDay(minStr)
	if err != nil {
		return Window{}, err
	}
	maxTime, err := parseTimeOfDay(maxStr)
	if err != nil {
		return Window{}, err
	}

	return Window{Date: w.Date, MinTime: minTime, MaxTime: maxTime}, nil
}

// Contains reports whether t departs on the window's date, at a wall-clock
// time inside the inclusive range. A range with MinTime > MaxTime wraps past
// midnight (23:00-06:00 accepts 23:30 and 05:10 on that date).
func (w Window) Contains(t time.Time) bool {
	if t.Format(models.DateLayout) != w.Date {
		return false
	}

	minutes := t.Hour()*60 + t.Minute()
	if w.MinTime <= w.MaxTime {
		return minutes >= w.MinTime && minutes <= w.MaxTime
	}
	return minutes >= w.MinTime || minutes <= w.MaxTime
}

// DestinationAllowed applies the exclude list first, then the optional
// allow-list. A nil allow-list admits every destination.
func DestinationAllowed(code string, excluded []string, included *[]string) bool {
	for _, c := range excluded {
		if c == code {
			return false
		}
	}
	if included == nil {
		return true
	}
	for _, c := range *included {
		if c == code {
			return true
		}
	}
	return false
}

// Flights keeps the flights departing inside w whose destination passes the
// include/exclude lists.
func Flights(flights []models.Flight, w Window, excluded []string, included *[]string) []models.Flight {
	result := make([]models.Flight, 0, len(flights))

	for _, f := range flights {
		if !w.Contains(f.DepartureTime) {
			continue
		}
		if !DestinationAllowed(f.Destination, excluded, included) {
			continue
		}
		result = append(result, f)
	}

	return result
}

// SortByPrice sorts in place, ascending, keeping the relative order of equal prices.
func SortByPrice(flights []models.Flight) {
	sort.SliceStable(flights, func(i, j int) bool {
		return flights[i].Price < flights[j].Price
	})
}

// SortTripsByTotal sorts in place, ascending, keeping the relative order of equal totals.
func SortTripsByTotal(trips []models.Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].TotalPrice < trips[j].TotalPrice
	})
}

func parseTimeOfDay(s string) (int, error) {
	t, err := time.Parse(models.TimeOfDayLayout, s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

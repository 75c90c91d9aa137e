// Package dedup tells which trips of a scan were not seen in a previous one.
package dedup

import "github.com/dharmasatrya/flightwatcher/internal/models"

// NewTrips returns the trips of current whose identity is absent from
// previous, in current's order. With no previous trips every trip is new.
func NewTrips(previous, current []models.Trip) []models.Trip {
	if len(previous) == 0 {
		out := make([]models.Trip, len(current))
		copy(out, current)
		return out
	}

	seen := make(map[models.TripIdentity]struct{}, len(previous))
	for _, t := range previous {
		seen[t.Identity()] = struct{}{}
	}

	fresh := make([]models.Trip, 0, len(current))
	for _, t := range current {
		if _, ok := seen[t.Identity()]; !ok {
			fresh = append(fresh, t)
		}
	}
	return fresh
}

package scanner

import (
	"context"
	"sort"
	"strings"

	"github.com/dharmasatrya/flightwatcher/internal/models"
	"github.com/dharmasatrya/flightwatcher/internal/providers"
)

const (
	discoveryOffsetDays = 30
	discoverySpanDays   = 60
	discoveryMaxPrice   = 1000
	unknownCountry      = "Autre"
)

// Destinations lists every destination served from airport between 30 and
// 90 days from now, grouped by country and sorted by name. It costs a
// single source query.
func (s *Service) Destinations(ctx context.Context, airport string) (map[string][]models.Destination, error) {
	airport = strings.ToUpper(strings.TrimSpace(airport))
	if airport == "" {
		airport = s.scanner.defaults.Airport
	}

	from := s.now().AddDate(0, 0, discoveryOffsetDays)
	to := from.AddDate(0, 0, discoverySpanDays)

	flights, err := s.scanner.source.Query(ctx, providers.FareQuery{
		Airport:  airport,
		DateFrom: from.Format(models.DateLayout),
		DateTo:   to.Format(models.DateLayout),
		MaxPrice: discoveryMaxPrice,
	})
	if err != nil {
		return nil, err
	}

	return GroupDestinations(flights), nil
}

// GroupDestinations de-duplicates flights by destination code, keeping the
// first occurrence, and groups them by the country suffix of their full name.
func GroupDestinations(flights []models.Flight) map[string][]models.Destination {
	seen := make(map[string]bool)
	byCountry := make(map[string][]models.Destination)

	for _, f := range flights {
		if seen[f.Destination] {
			continue
		}
		seen[f.Destination] = true

		country := unknownCountry
		if i := strings.LastIndex(f.DestinationFull, ", "); i >= 0 {
			country = f.DestinationFull[i+2:]
		}
		name := strings.TrimSpace(strings.SplitN(f.DestinationFull, ",", 2)[0])

		byCountry[country] = append(byCountry[country], models.Destination{
			Code:            f.Destination,
			Name:            name,
			Country:         country,
			DestinationFull: f.DestinationFull,
		})
	}

	result := make(map[string][]models.Destination, len(byCountry))
	for country, list := range byCountry {
		sort.Slice(list, func(i, j int) bool {
			if list[i].Name != list[j].Name {
				return list[i].Name < list[j].Name
			}
			return list[i].Code < list[j].Code
		})
		result[country] = list
	}
	return result
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/goccy/go-json"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

const keyPrefix = "scan:"

// Key derives the cache key for a scan request. The request is normalized
// first, so destination list order and omitted-vs-default fields do not
// matter, while date windows keep their order.
func Key(req models.ScanRequest, defaults models.ScanDefaults) string {
	n := req.Normalize(defaults)

	keyData := struct {
		DepartureAirport string              `json:"departure_airport"`
		BudgetMax        int                 `json:"budget_max"`
		OutboundLimit    int                 `json:"limite_allers"`
		OutboundDates    []models.DateWindow `json:"dates_depart"`
		ReturnDates      []models.DateWindow `json:"dates_retour"`
		Excluded         []string            `json:"destinations_exclues"`
		// null when absent, which is not the same request as an empty allow-list
		Included *[]string `json:"destinations_incluses"`
	}{
		DepartureAirport: n.DepartureAirport,
		BudgetMax:        n.BudgetMax,
		OutboundLimit:    n.OutboundLimit,
		OutboundDates:    n.OutboundDates,
		ReturnDates:      n.ReturnDates,
		Excluded:         n.ExcludedDestinations,
		Included:         n.IncludedDestinations,
	}

	data, err := json.Marshal(keyData)
	if err != nil {
		// strings, ints and string slices always encode
		panic("cache: encode key: " + err.Error())
	}
	hash := sha256.Sum256(data)
	return keyPrefix + hex.EncodeToString(hash[:])
}

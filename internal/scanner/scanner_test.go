package scanner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dharmasatrya/flightwatcher/internal/models"
	"github.com/dharmasatrya/flightwatcher/internal/providers"
)

// fakeSource answers from a table keyed by airport, date and destination.
type fakeSource struct {
	fares    map[string][]models.Flight
	failing  map[string]bool
	rejected map[string]bool
	queries  []providers.FareQuery
}

func newFakeSource() *fakeSource {
	return &fakeSource{fares: map[string][]models.Flight{}, failing: map[string]bool{}, rejected: map[string]bool{}}
}

func fareKey(airport, date, destination string) string {
	return fmt.Sprintf("%s|%s|%s", airport, date, destination)
}

func (f *fakeSource) add(airport, date, destination string, flights ...models.Flight) {
	k := fareKey(airport, date, destination)
	f.fares[k] = append(f.fares[k], flights...)
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Query(ctx context.Context, q providers.FareQuery) ([]models.Flight, error) {
	f.queries = append(f.queries, q)
	k := fareKey(q.Airport, q.DateFrom, q.Destination)
	if f.failing[k] {
		return nil, errors.New("upstream timeout")
	}
	if f.rejected[k] {
		return nil, providers.NewProviderError("fake", providers.ErrSourceRejected)
	}
	return f.fares[k], nil
}

func flight(num, from, to, date, clock string, price float64) models.Flight {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		panic(err)
	}
	return models.Flight{
		FlightNumber:    num,
		Origin:          from,
		Destination:     to,
		DestinationFull: to + " City, Country",
		DepartureTime:   t,
		Price:           price,
		Currency:        "EUR",
	}
}

const (
	dayOut = "2026-11-02"
	dayRet = "2026-11-05"
)

func scenarioRequest() models.ScanRequest {
	return models.ScanRequest{
		DepartureAirport: "BVA",
		OutboundDates:    []models.DateWindow{{Date: dayOut, TimeMin: "06:00", TimeMax: "23:59"}},
		ReturnDates:      []models.DateWindow{{Date: dayRet, TimeMin: "06:00", TimeMax: "23:59"}},
		BudgetMax:        150,
		OutboundLimit:    50,
	}
}

// scenarioSource: two outbound flights to X (40, 60), one to Y (120). X has a
// 50 return (total 90); Y has a 100 return (total 220, over budget).
func scenarioSource() *fakeSource {
	src := newFakeSource()
	src.add("BVA", dayOut, "",
		flight("FR 1", "BVA", "XXX", dayOut, "07:00", 60),
		flight("FR 2", "BVA", "XXX", dayOut, "09:00", 40),
		flight("FR 3", "BVA", "YYY", dayOut, "10:00", 120),
	)
	src.add("XXX", dayRet, "BVA", flight("FR 4", "XXX", "BVA", dayRet, "18:00", 50))
	src.add("YYY", dayRet, "BVA", flight("FR 5", "YYY", "BVA", dayRet, "18:00", 100))
	return src
}

func TestScan_EndToEndScenario(t *testing.T) {
	src := scenarioSource()
	s := New(src, models.DefaultScanDefaults())

	result, err := s.Scan(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(result.Trips) != 1 {
		t.Fatalf("got %d trips, want 1: %+v", len(result.Trips), result.Trips)
	}
	trip := result.Trips[0]
	if trip.DestinationCode != "XXX" || trip.TotalPrice != 90 {
		t.Errorf("trip = %s @ %v, want XXX @ 90", trip.DestinationCode, trip.TotalPrice)
	}
	if trip.Outbound.FlightNumber != "FR 2" || trip.Return.FlightNumber != "FR 4" {
		t.Errorf("legs = %s / %s, want FR 2 / FR 4", trip.Outbound.FlightNumber, trip.Return.FlightNumber)
	}

	// one outbound window + two destinations x one return window
	if result.Queries != 3 {
		t.Errorf("queries = %d, want 3", result.Queries)
	}

	first := src.queries[0]
	if first.DateFrom != dayOut || first.DateTo != dayOut || first.MaxPrice != 150 || first.TimeFrom != "06:00" {
		t.Errorf("outbound query = %+v", first)
	}
	for _, q := range src.queries[1:] {
		if q.Destination != "BVA" || q.DateFrom != dayRet || q.DateTo != dayRet {
			t.Errorf("return query = %+v", q)
		}
	}
}

func TestScan_EmptyDateListsShortCircuit(t *testing.T) {
	for name, req := range map[string]models.ScanRequest{
		"no outbound": {ReturnDates: []models.DateWindow{{Date: dayRet}}},
		"no return":   {OutboundDates: []models.DateWindow{{Date: dayOut}}},
	} {
		t.Run(name, func(t *testing.T) {
			src := newFakeSource()
			result, err := New(src, models.DefaultScanDefaults()).Scan(context.Background(), req)
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if len(result.Trips) != 0 || result.Queries != 0 || len(src.queries) != 0 {
				t.Errorf("result = %+v, queries issued = %d", result, len(src.queries))
			}
			if result.Trips == nil {
				t.Error("trips should be an empty slice, not nil")
			}
		})
	}
}

func TestScan_NoOutboundCandidatesStillCountsQueries(t *testing.T) {
	src := newFakeSource()
	req := scenarioRequest()
	req.OutboundDates = append(req.OutboundDates, models.DateWindow{Date: "2026-11-03"})

	result, err := New(src, models.DefaultScanDefaults()).Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Trips) != 0 || result.Queries != 2 {
		t.Errorf("result = %+v, want no trips and 2 queries", result)
	}
}

func TestScan_OutboundFailureSkipsOnlyThatDate(t *testing.T) {
	src := scenarioSource()
	src.failing[fareKey("BVA", "2026-11-01", "")] = true

	req := scenarioRequest()
	req.OutboundDates = []models.DateWindow{{Date: "2026-11-01"}, {Date: dayOut, TimeMin: "06:00", TimeMax: "23:59"}}

	result, err := New(src, models.DefaultScanDefaults()).Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Trips) != 1 {
		t.Errorf("got %d trips, want 1", len(result.Trips))
	}
	if result.Queries != 4 {
		t.Errorf("queries = %d, want 4 (failed query counted)", result.Queries)
	}
}

func TestScan_BreakerRejectionsAreNotCounted(t *testing.T) {
	src := scenarioSource()
	src.rejected[fareKey("BVA", "2026-11-01", "")] = true

	req := scenarioRequest()
	req.OutboundDates = []models.DateWindow{{Date: "2026-11-01"}, {Date: dayOut, TimeMin: "06:00", TimeMax: "23:59"}}

	result, err := New(src, models.DefaultScanDefaults()).Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Trips) != 1 {
		t.Errorf("got %d trips, want 1", len(result.Trips))
	}
	if len(src.queries) != 4 {
		t.Fatalf("source saw %d calls, want 4", len(src.queries))
	}
	if result.Queries != 3 {
		t.Errorf("queries = %d, want 3 (rejected call not counted)", result.Queries)
	}
}

func TestScan_ReturnFailureSkipsOnlyThatPairing(t *testing.T) {
	src := scenarioSource()
	src.failing[fareKey("XXX", "2026-11-04", "BVA")] = true

	req := scenarioRequest()
	req.ReturnDates = []models.DateWindow{{Date: "2026-11-04"}, {Date: dayRet, TimeMin: "06:00", TimeMax: "23:59"}}

	result, err := New(src, models.DefaultScanDefaults()).Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Trips) != 1 || result.Trips[0].DestinationCode != "XXX" {
		t.Errorf("trips = %+v, want one XXX trip", result.Trips)
	}
}

func TestScan_RechecksDateAndWindow(t *testing.T) {
	src := newFakeSource()
	src.add("BVA", dayOut, "",
		flight("FR 1", "BVA", "AAA", dayOut, "05:00", 10),       // before window
		flight("FR 2", "BVA", "BBB", "2026-11-03", "08:00", 10), // wrong day
		flight("FR 3", "BVA", "CCC", dayOut, "08:00", 30),
	)
	src.add("AAA", dayRet, "BVA", flight("FR 4", "AAA", "BVA", dayRet, "10:00", 10))
	src.add("BBB", dayRet, "BVA", flight("FR 5", "BBB", "BVA", dayRet, "10:00", 10))
	src.add("CCC", dayRet, "BVA",
		flight("FR 6", "CCC", "BVA", dayRet, "05:59", 5), // before window
		flight("FR 7", "CCC", "BVA", dayRet, "12:00", 40),
	)

	result, err := New(src, models.DefaultScanDefaults()).Scan(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Trips) != 1 {
		t.Fatalf("got %d trips, want 1", len(result.Trips))
	}
	if got := result.Trips[0]; got.DestinationCode != "CCC" || got.Return.FlightNumber != "FR 7" {
		t.Errorf("trip = %+v", got)
	}
}

func TestScan_WraparoundWindow(t *testing.T) {
	src := newFakeSource()
	src.add("BVA", dayOut, "",
		flight("FR 1", "BVA", "AAA", dayOut, "23:30", 20),
		flight("FR 2", "BVA", "BBB", dayOut, "12:00", 20),
	)
	src.add("AAA", dayRet, "BVA", flight("FR 3", "AAA", "BVA", dayRet, "10:00", 20))
	src.add("BBB", dayRet, "BVA", flight("FR 4", "BBB", "BVA", dayRet, "10:00", 20))

	req := scenarioRequest()
	req.OutboundDates = []models.DateWindow{{Date: dayOut, TimeMin: "23:00", TimeMax: "06:00"}}

	result, err := New(src, models.DefaultScanDefaults()).Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Trips) != 1 || result.Trips[0].DestinationCode != "AAA" {
		t.Errorf("trips = %+v, want only AAA", result.Trips)
	}
	if q := src.queries[0]; q.TimeFrom != "" || q.TimeTo != "" {
		t.Errorf("wrapped window must not be sent upstream, got %q-%q", q.TimeFrom, q.TimeTo)
	}
}

func TestScan_InvalidWindowIsError(t *testing.T) {
	req := scenarioRequest()
	req.OutboundDates = []models.DateWindow{{Date: "not-a-date"}}

	_, err := New(newFakeSource(), models.DefaultScanDefaults()).Scan(context.Background(), req)
	if !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("err = %v, want ErrInvalidWindow", err)
	}
}

func TestScan_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(scenarioSource(), models.DefaultScanDefaults()).Scan(ctx, scenarioRequest())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestScan_Properties(t *testing.T) {
	src := newFakeSource()
	dests := []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF"}
	for i, d := range dests {
		src.add("BVA", dayOut, "", flight("O"+d, "BVA", d, dayOut, "08:00", float64(20+10*i)))
		src.add(d, dayRet, "BVA",
			flight("R1"+d, d, "BVA", dayRet, "09:00", float64(30+15*i)),
			flight("R2"+d, d, "BVA", dayRet, "19:00", float64(25+20*i)),
		)
	}

	included := []string{"AAA", "BBB", "CCC", "DDD"}
	req := scenarioRequest()
	req.BudgetMax = 120
	req.ExcludedDestinations = []string{"BBB"}
	req.IncludedDestinations = &included

	result, err := New(src, models.DefaultScanDefaults()).Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Trips) == 0 {
		t.Fatal("expected some trips")
	}

	allowed := map[string]bool{"AAA": true, "CCC": true, "DDD": true}
	for _, trip := range result.Trips {
		if trip.TotalPrice > 120 {
			t.Errorf("%s total %v exceeds budget", trip.DestinationCode, trip.TotalPrice)
		}
		if trip.TotalPrice != trip.Outbound.Price+trip.Return.Price {
			t.Errorf("%s total %v is not the sum of legs", trip.DestinationCode, trip.TotalPrice)
		}
		if !allowed[trip.DestinationCode] {
			t.Errorf("destination %s should have been filtered", trip.DestinationCode)
		}
	}
}

func TestReduceOutbound(t *testing.T) {
	candidates := []models.Flight{
		flight("a", "BVA", "OPO", dayOut, "08:00", 50),
		flight("b", "BVA", "CIA", dayOut, "08:00", 30),
		flight("c", "BVA", "OPO", "2026-11-03", "08:00", 20),
		flight("d", "BVA", "MAD", dayOut, "08:00", 30),
		flight("e", "BVA", "CIA", dayOut, "09:00", 30),
		flight("f", "BVA", "LIS", dayOut, "08:00", 90),
	}

	got := ReduceOutbound(candidates, 3)
	want := []string{"c", "b", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %d flights, want %d", len(got), len(want))
	}
	for i, f := range got {
		if f.FlightNumber != want[i] {
			t.Errorf("position %d = %s, want %s", i, f.FlightNumber, want[i])
		}
	}

	seen := map[string]bool{}
	for _, f := range ReduceOutbound(candidates, 50) {
		if seen[f.Destination] {
			t.Errorf("destination %s appears twice", f.Destination)
		}
		seen[f.Destination] = true
	}
	if len(seen) != 4 {
		t.Errorf("distinct destinations = %d, want 4", len(seen))
	}

	if candidates[0].FlightNumber != "a" {
		t.Error("ReduceOutbound must not reorder its input")
	}
}

func TestMatchReturns_FirstCheapestWins(t *testing.T) {
	src := newFakeSource()
	src.add("BVA", dayOut, "", flight("O", "BVA", "OPO", dayOut, "08:00", 40))
	src.add("OPO", "2026-11-04", "BVA", flight("R1", "OPO", "BVA", "2026-11-04", "10:00", 45))
	src.add("OPO", dayRet, "BVA", flight("R2", "OPO", "BVA", dayRet, "10:00", 45))

	req := scenarioRequest()
	req.ReturnDates = []models.DateWindow{{Date: "2026-11-04"}, {Date: dayRet}}

	result, err := New(src, models.DefaultScanDefaults()).Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Trips) != 1 || result.Trips[0].Return.FlightNumber != "R1" {
		t.Errorf("trips = %+v, want return R1", result.Trips)
	}
}

func TestScan_BudgetBoundaryInclusive(t *testing.T) {
	src := newFakeSource()
	src.add("BVA", dayOut, "", flight("O", "BVA", "OPO", dayOut, "08:00", 100))
	src.add("OPO", dayRet, "BVA", flight("R", "OPO", "BVA", dayRet, "10:00", 50))

	result, err := New(src, models.DefaultScanDefaults()).Scan(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Trips) != 1 || result.Trips[0].TotalPrice != 150 {
		t.Errorf("trips = %+v, want one trip at exactly the budget", result.Trips)
	}
}

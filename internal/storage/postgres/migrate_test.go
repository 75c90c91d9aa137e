package postgres

import (
	"strings"
	"testing"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected embedded migrations")
	}

	first := migrations[0]
	if first.Version != "001" || first.Name != "init" {
		t.Errorf("first migration = %s_%s", first.Version, first.Name)
	}

	for _, table := range []string{
		"user_profiles", "saved_searches", "favorites", "subscription_plans",
		"plan_features", "analytics_events", "price_history", "search_results_cache",
	} {
		if !strings.Contains(first.SQL, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("init migration does not create %s", table)
		}
	}

	for i := 1; i < len(migrations); i++ {
		if migrations[i-1].Version >= migrations[i].Version {
			t.Errorf("migrations out of order: %s before %s", migrations[i-1].Version, migrations[i].Version)
		}
	}
}

package postgres

import (
	"testing"
	"time"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

func TestWhere(t *testing.T) {
	var w where
	if w.String() != "" {
		t.Errorf("empty where = %q", w.String())
	}

	w.add("user_id = ?", "u1")
	w.add("created_at >= ?", "2026-10-01")
	limit := w.next(50)

	if got, want := w.String(), "WHERE user_id = $1 AND created_at >= $2"; got != want {
		t.Errorf("where = %q, want %q", got, want)
	}
	if limit != "$3" {
		t.Errorf("next placeholder = %s, want $3", limit)
	}
	if len(w.args) != 3 {
		t.Errorf("args = %v", w.args)
	}
}

func TestWhere_ILike(t *testing.T) {
	var w where
	w.add("email ILIKE ?", "%bob%")
	if got := w.String(); got != "WHERE email ILIKE $1" {
		t.Errorf("where = %q", got)
	}
}

func TestNullIfEmpty(t *testing.T) {
	if nullIfEmpty("") != nil {
		t.Error("empty string should map to NULL")
	}
	if nullIfEmpty("BVA") != "BVA" {
		t.Error("non-empty string should pass through")
	}
}

func TestEventFilter(t *testing.T) {
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	w := eventFilter(models.ListFilter{Type: "booking_click", Partner: "kiwi", From: &from})

	want := "WHERE event_type = $1 AND partner_id = $2 AND created_at >= $3"
	if got := w.String(); got != want {
		t.Errorf("where = %q, want %q", got, want)
	}
	if len(w.args) != 3 || w.args[2] != from {
		t.Errorf("args = %v", w.args)
	}
}

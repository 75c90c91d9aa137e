package providers

import (
	"context"
	"errors"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

// FareQuery asks a source for one-way fares leaving Airport between DateFrom
// and DateTo (both inclusive, YYYY-MM-DD). Empty optional fields are not sent.
type FareQuery struct {
	Airport     string
	DateFrom    string
	DateTo      string
	TimeFrom    string
	TimeTo      string
	MaxPrice    float64
	Destination string
}

// FlightSource returns priced one-way flights for a query. Implementations
// must be safe for concurrent use.
type FlightSource interface {
	Name() string
	Query(ctx context.Context, q FareQuery) ([]models.Flight, error)
}

var (
	ErrBadStatus       = errors.New("unexpected status from fare source")
	ErrSourceRejected  = errors.New("fare source temporarily rejected by circuit breaker")
	ErrInvalidResponse = errors.New("invalid fare source response")
)

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

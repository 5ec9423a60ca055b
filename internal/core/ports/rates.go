package ports

import (
	"context"
	"time"

	"github.com/finbook/currency_sync/internal/dto"
	"github.com/shopspring/decimal"
)

// RateCache is a time-bounded key-value cache for serialized rate data.
// Entries expire independently; Get on an expired or absent key reports a
// miss and the caller repopulates. Implementations keep a registry of active
// keys so prefix invalidation is deterministic rather than relying on
// backend wildcard semantics.
type RateCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Invalidate(ctx context.Context, keys ...string)
	InvalidatePrefix(ctx context.Context, prefix string)
	Contains(ctx context.Context, key string) bool
	Driver() string
}

// RateFetcher retrieves exchange-rate data from the configured mirror
// endpoints, consulting the cache first.
type RateFetcher interface {
	// FetchRates returns a mapping of lowercase target code to rate (units of
	// target per 1 unit of base). An empty target list means all currencies.
	// When every endpoint fails the call returns apperrors.ErrRateSourceExhausted.
	FetchRates(ctx context.Context, base string, targets []string) (map[string]decimal.Decimal, error)

	// FetchAvailableCurrencies returns the lowercase code to display-name map
	// served by the mirrors.
	FetchAvailableCurrencies(ctx context.Context) (map[string]string, error)

	// CheckEndpointHealth probes every configured endpoint and reports one
	// sample per endpoint regardless of outcome.
	CheckEndpointHealth(ctx context.Context) []dto.EndpointHealth
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/finbook/currency_sync/internal/apperrors"
	"github.com/finbook/currency_sync/internal/core/ports"
	"github.com/finbook/currency_sync/internal/dto"
	"github.com/finbook/currency_sync/internal/platform/cache"
	"github.com/shopspring/decimal"
)

// healthProbeBase is the base currency used for endpoint health probes.
const healthProbeBase = "usd"

// RateFetcherService retrieves rate tables from an ordered list of mirror
// endpoints, caching results under base+target-subset keys. Mirrors serve
// identical data with no SLA, so the resilience strategy is to walk them in
// fixed priority order without retrying any single one.
type RateFetcherService struct {
	client    *http.Client
	endpoints []string
	rateCache ports.RateCache
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// NewRateFetcherService creates a new RateFetcherService.
func NewRateFetcherService(endpoints []string, timeout time.Duration, rateCache ports.RateCache, cacheTTL time.Duration, logger *slog.Logger) *RateFetcherService {
	return &RateFetcherService{
		client:    &http.Client{Timeout: timeout},
		endpoints: endpoints,
		rateCache: rateCache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

var _ ports.RateFetcher = (*RateFetcherService)(nil)

// FetchRates returns target-code -> rate for the given base currency,
// restricted to targets when non-empty. The wire format uses lowercase codes.
func (s *RateFetcherService) FetchRates(ctx context.Context, base string, targets []string) (map[string]decimal.Decimal, error) {
	base = strings.ToLower(base)
	key := cache.RatesKey(base, targets)

	if raw, ok := s.rateCache.Get(ctx, key); ok {
		var rates map[string]decimal.Decimal
		if err := json.Unmarshal(raw, &rates); err == nil {
			return rates, nil
		}
		// Undecodable entry: drop it and refetch.
		s.rateCache.Invalidate(ctx, key)
	}

	var lastErr error
	for _, endpoint := range s.endpoints {
		rates, err := s.fetchRateTable(ctx, endpoint, base)
		if err != nil {
			s.logger.Warn("rate endpoint failed, trying next",
				slog.String("endpoint", endpoint),
				slog.String("base", base),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}

		if len(targets) > 0 {
			rates = filterRates(rates, targets)
		}

		if raw, err := json.Marshal(rates); err == nil {
			s.rateCache.Set(ctx, key, raw, s.cacheTTL)
		}
		return rates, nil
	}

	return nil, fmt.Errorf("%w: base currency %s: %v", apperrors.ErrRateSourceExhausted, base, lastErr)
}

// FetchAvailableCurrencies returns the lowercase code -> display name map.
func (s *RateFetcherService) FetchAvailableCurrencies(ctx context.Context) (map[string]string, error) {
	if raw, ok := s.rateCache.Get(ctx, cache.CurrencyListKey); ok {
		var names map[string]string
		if err := json.Unmarshal(raw, &names); err == nil {
			return names, nil
		}
		s.rateCache.Invalidate(ctx, cache.CurrencyListKey)
	}

	var lastErr error
	for _, endpoint := range s.endpoints {
		names, err := s.fetchCurrencyList(ctx, endpoint)
		if err != nil {
			s.logger.Warn("currency list endpoint failed, trying next",
				slog.String("endpoint", endpoint),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}

		if raw, err := json.Marshal(names); err == nil {
			s.rateCache.Set(ctx, cache.CurrencyListKey, raw, s.cacheTTL)
		}
		return names, nil
	}

	return nil, fmt.Errorf("%w: currency list: %v", apperrors.ErrRateSourceExhausted, lastErr)
}

// CheckEndpointHealth probes every endpoint with a USD rate-table request and
// records latency regardless of outcome.
func (s *RateFetcherService) CheckEndpointHealth(ctx context.Context) []dto.EndpointHealth {
	samples := make([]dto.EndpointHealth, 0, len(s.endpoints))
	for _, endpoint := range s.endpoints {
		samples = append(samples, s.probeEndpoint(ctx, endpoint))
	}
	return samples
}

func (s *RateFetcherService) probeEndpoint(ctx context.Context, endpoint string) dto.EndpointHealth {
	sample := dto.EndpointHealth{Endpoint: endpoint}
	start := time.Now()

	body, httpStatus, err := s.get(ctx, fmt.Sprintf("%s/currencies/%s.json", endpoint, healthProbeBase))
	sample.ResponseTimeMS = time.Since(start).Milliseconds()
	sample.HTTPStatus = httpStatus
	if err != nil {
		sample.Status = dto.EndpointStatusFailed
		sample.Error = err.Error()
		return sample
	}

	if _, err := decodeRateTable(body, healthProbeBase); err != nil {
		sample.Status = dto.EndpointStatusError
		sample.Error = err.Error()
		return sample
	}

	sample.Status = dto.EndpointStatusHealthy
	return sample
}

func (s *RateFetcherService) fetchRateTable(ctx context.Context, endpoint, base string) (map[string]decimal.Decimal, error) {
	body, _, err := s.get(ctx, fmt.Sprintf("%s/currencies/%s.json", endpoint, base))
	if err != nil {
		return nil, err
	}
	return decodeRateTable(body, base)
}

func (s *RateFetcherService) fetchCurrencyList(ctx context.Context, endpoint string) (map[string]string, error) {
	body, _, err := s.get(ctx, fmt.Sprintf("%s/currencies.json", endpoint))
	if err != nil {
		return nil, err
	}

	var names map[string]string
	if err := json.Unmarshal(body, &names); err != nil {
		return nil, fmt.Errorf("malformed currency list: %w", err)
	}
	return names, nil
}

// get issues a single GET with the client's timeout. Non-2xx responses are
// reported as errors alongside the status code.
func (s *RateFetcherService) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// decodeRateTable parses the mirror payload, which nests the rate map under a
// top-level key equal to the base code. Any shape mismatch is a source
// failure, not a crash.
func decodeRateTable(body []byte, base string) (map[string]decimal.Decimal, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed rate payload: %w", err)
	}

	raw, ok := payload[base]
	if !ok {
		return nil, fmt.Errorf("rate payload missing %q key", base)
	}

	var rates map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &rates); err != nil {
		return nil, fmt.Errorf("malformed rate table for %q: %w", base, err)
	}
	return rates, nil
}

func filterRates(rates map[string]decimal.Decimal, targets []string) map[string]decimal.Decimal {
	filtered := make(map[string]decimal.Decimal, len(targets))
	for _, target := range targets {
		code := strings.ToLower(target)
		if rate, ok := rates[code]; ok {
			filtered[code] = rate
		}
	}
	return filtered
}

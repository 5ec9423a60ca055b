package services

import (
	"context"
	"fmt"
	"time"

	"github.com/finbook/currency_sync/internal/core/ports"
	portsrepo "github.com/finbook/currency_sync/internal/core/ports/repositories"
	portssvc "github.com/finbook/currency_sync/internal/core/ports/services"
	"github.com/finbook/currency_sync/internal/dto"
	"github.com/finbook/currency_sync/internal/platform/cache"
)

// staleAfter marks a currency as long-stale in the update statistics.
const staleAfter = 24 * time.Hour

// StatusService aggregates endpoint health, staleness statistics and
// integrity status into one operational report. It never mutates the
// currency store.
type StatusService struct {
	currencyRepo portsrepo.CurrencyReader
	fetcher      ports.RateFetcher
	updater      portssvc.RateUpdaterSvc
	integrity    portssvc.IntegritySvc
	rateCache    ports.RateCache
	cacheTTL     time.Duration
}

// NewStatusService creates a new StatusService.
func NewStatusService(currencyRepo portsrepo.CurrencyReader, fetcher ports.RateFetcher, updater portssvc.RateUpdaterSvc, integrity portssvc.IntegritySvc, rateCache ports.RateCache, cacheTTL time.Duration) *StatusService {
	return &StatusService{
		currencyRepo: currencyRepo,
		fetcher:      fetcher,
		updater:      updater,
		integrity:    integrity,
		rateCache:    rateCache,
		cacheTTL:     cacheTTL,
	}
}

// MonitorAPIHealth probes every configured rate endpoint.
func (s *StatusService) MonitorAPIHealth(ctx context.Context) []dto.EndpointHealth {
	return s.fetcher.CheckEndpointHealth(ctx)
}

// GetUpdateStatistics summarizes freshness of the currency store.
func (s *StatusService) GetUpdateStatistics(ctx context.Context) (*dto.UpdateStatistics, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies for statistics: %w", err)
	}

	stats := &dto.UpdateStatistics{TotalCurrencies: len(currencies)}
	now := time.Now().UTC()
	for _, currency := range currencies {
		if currency.ExchangeRate.IsPositive() {
			stats.WithPositiveRate++
		}
		if currency.IsDefault {
			stats.DefaultCurrency = currency.Code
			continue
		}
		if currency.LastUpdated == nil {
			stats.NeverUpdated++
			continue
		}
		if currency.LastUpdated.Before(now.Add(-staleAfter)) {
			stats.UpdatedOver24hAgo++
		}
	}
	stats.MostRecentUpdate = mostRecentUpdate(currencies)

	needsUpdate, err := s.updater.RatesNeedUpdate(ctx)
	if err != nil {
		return nil, err
	}
	stats.NeedsUpdate = needsUpdate
	return stats, nil
}

// GenerateStatusReport bundles health, statistics, integrity and a cache
// snapshot. Pure aggregation, no new logic.
func (s *StatusService) GenerateStatusReport(ctx context.Context) (*dto.StatusReport, error) {
	stats, err := s.GetUpdateStatistics(ctx)
	if err != nil {
		return nil, err
	}

	integrity, err := s.integrity.ValidateCurrencyIntegrity(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.StatusReport{
		GeneratedAt: time.Now().UTC(),
		APIHealth:   s.MonitorAPIHealth(ctx),
		Statistics:  *stats,
		Integrity:   *integrity,
		Cache: dto.CacheStatus{
			Driver:          s.rateCache.Driver(),
			TTLHours:        s.cacheTTL.Hours(),
			HasCurrencyList: s.rateCache.Contains(ctx, cache.CurrencyListKey),
		},
	}, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finbook/currency_sync/internal/apperrors"
	"github.com/finbook/currency_sync/internal/core/domain"
	"github.com/finbook/currency_sync/internal/core/ports"
	portsrepo "github.com/finbook/currency_sync/internal/core/ports/repositories"
	"github.com/finbook/currency_sync/internal/dto"
	"github.com/finbook/currency_sync/internal/platform/cache"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// RateUpdateService applies fetched rates onto the currency store. One
// missing currency never aborts the batch; rows already written stay written.
type RateUpdateService struct {
	currencyRepo       portsrepo.CurrencyRepositoryFacade
	fetcher            ports.RateFetcher
	rateCache          ports.RateCache
	stalenessThreshold time.Duration
	logger             *slog.Logger
}

// NewRateUpdateService creates a new RateUpdateService.
func NewRateUpdateService(currencyRepo portsrepo.CurrencyRepositoryFacade, fetcher ports.RateFetcher, rateCache ports.RateCache, stalenessThreshold time.Duration, logger *slog.Logger) *RateUpdateService {
	return &RateUpdateService{
		currencyRepo:       currencyRepo,
		fetcher:            fetcher,
		rateCache:          rateCache,
		stalenessThreshold: stalenessThreshold,
		logger:             logger,
	}
}

// UpdateDatabaseRates fetches rates for the default currency as base and
// writes them onto the resolved target rows. It fails fast with
// ErrNoBaseCurrency when no default exists and propagates
// ErrRateSourceExhausted when every mirror is down.
func (s *RateUpdateService) UpdateDatabaseRates(ctx context.Context, targetCodes []string) (*dto.UpdateRatesResult, error) {
	return s.reconcile(ctx, targetCodes, true)
}

// PreviewRates computes the reconciliation result without writing any row or
// invalidating the cache.
func (s *RateUpdateService) PreviewRates(ctx context.Context, targetCodes []string) (*dto.UpdateRatesResult, error) {
	return s.reconcile(ctx, targetCodes, false)
}

func (s *RateUpdateService) reconcile(ctx context.Context, targetCodes []string, apply bool) (*dto.UpdateRatesResult, error) {
	defaultCurrency, err := s.currencyRepo.FindDefaultCurrency(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNoBaseCurrency
		}
		return nil, fmt.Errorf("failed to resolve default currency: %w", err)
	}

	rows, err := s.resolveTargets(ctx, targetCodes)
	if err != nil {
		return nil, err
	}

	var fetchTargets []string
	if len(targetCodes) > 0 {
		fetchTargets = make([]string, len(rows))
		for i, row := range rows {
			fetchTargets[i] = strings.ToLower(row.Code)
		}
	}

	rates, err := s.fetcher.FetchRates(ctx, strings.ToLower(defaultCurrency.Code), fetchTargets)
	if err != nil {
		return nil, err
	}

	result := &dto.UpdateRatesResult{
		Updated:   []dto.RateChange{},
		Failed:    []string{},
		Timestamp: time.Now().UTC(),
		DryRun:    !apply,
	}

	for _, row := range rows {
		newRate, ok := rates[strings.ToLower(row.Code)]
		if !ok {
			result.Failed = append(result.Failed, row.Code)
			continue
		}

		if apply {
			if err := s.currencyRepo.UpdateRate(ctx, row.ID, newRate, result.Timestamp); err != nil {
				s.logger.Warn("failed to write rate, continuing batch",
					slog.String("currency", row.Code),
					slog.String("error", err.Error()))
				result.Failed = append(result.Failed, row.Code)
				continue
			}
		}

		result.Updated = append(result.Updated, dto.RateChange{
			Currency:      row.Code,
			OldRate:       row.ExchangeRate,
			NewRate:       newRate,
			ChangePercent: changePercent(row.ExchangeRate, newRate),
		})
	}

	if apply {
		s.invalidateRateCache(ctx)
	}
	return result, nil
}

// RatesNeedUpdate reports staleness: true when no non-default currency has
// ever been updated, or the most recent update is older than the threshold.
func (s *RateUpdateService) RatesNeedUpdate(ctx context.Context) (bool, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list currencies for staleness check: %w", err)
	}

	mostRecent := mostRecentUpdate(currencies)
	if mostRecent == nil {
		return true, nil
	}
	return time.Since(*mostRecent) > s.stalenessThreshold, nil
}

// resolveTargets returns the non-default rows to update, filtered to
// targetCodes (case-insensitive) when non-empty. Unknown codes in targetCodes
// are ignored; the reconciliation loop reports anything it could not update.
func (s *RateUpdateService) resolveTargets(ctx context.Context, targetCodes []string) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}

	wanted := make(map[string]bool, len(targetCodes))
	for _, code := range targetCodes {
		wanted[strings.ToUpper(code)] = true
	}

	var rows []domain.Currency
	for _, currency := range currencies {
		if currency.IsDefault {
			continue
		}
		if len(targetCodes) > 0 && !wanted[strings.ToUpper(currency.Code)] {
			continue
		}
		rows = append(rows, currency)
	}
	return rows, nil
}

// invalidateRateCache drops the common-currency rate tables, cached pair
// rates and the global currency-list key so subsequent reads see fresh data.
func (s *RateUpdateService) invalidateRateCache(ctx context.Context) {
	keys := make([]string, 0, len(cache.CommonCurrencies)+1)
	for _, code := range cache.CommonCurrencies {
		keys = append(keys, cache.RatesKey(code, nil))
	}
	keys = append(keys, cache.CurrencyListKey)
	s.rateCache.Invalidate(ctx, keys...)
	s.rateCache.InvalidatePrefix(ctx, cache.RatesKeyPrefix)
	s.rateCache.InvalidatePrefix(ctx, cache.ConversionKeyPrefix)
}

func changePercent(oldRate, newRate decimal.Decimal) decimal.Decimal {
	if !oldRate.IsPositive() {
		return decimal.Zero
	}
	return newRate.Sub(oldRate).Div(oldRate).Mul(oneHundred)
}

func mostRecentUpdate(currencies []domain.Currency) *time.Time {
	var mostRecent *time.Time
	for _, currency := range currencies {
		if currency.IsDefault || currency.LastUpdated == nil {
			continue
		}
		if mostRecent == nil || currency.LastUpdated.After(*mostRecent) {
			mostRecent = currency.LastUpdated
		}
	}
	return mostRecent
}

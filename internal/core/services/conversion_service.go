package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/finbook/currency_sync/internal/apperrors"
	"github.com/finbook/currency_sync/internal/core/ports"
	portsrepo "github.com/finbook/currency_sync/internal/core/ports/repositories"
	"github.com/finbook/currency_sync/internal/platform/cache"
	"github.com/shopspring/decimal"
)

const usdCode = "usd"

// ConversionService converts amounts between currency codes. When no direct
// rate exists the conversion triangulates through USD. A rate missing from an
// otherwise valid table defaults its factor to 1 so that callers still get an
// answer in degraded mode; the substitution is logged.
type ConversionService struct {
	fetcher      ports.RateFetcher
	currencyRepo portsrepo.CurrencyReader
	userSettings portsrepo.UserSettingsReader
	rateCache    ports.RateCache
	logger       *slog.Logger
}

// NewConversionService creates a new ConversionService.
func NewConversionService(fetcher ports.RateFetcher, currencyRepo portsrepo.CurrencyReader, userSettings portsrepo.UserSettingsReader, rateCache ports.RateCache, logger *slog.Logger) *ConversionService {
	return &ConversionService{
		fetcher:      fetcher,
		currencyRepo: currencyRepo,
		userSettings: userSettings,
		rateCache:    rateCache,
		logger:       logger,
	}
}

// Convert converts amount from fromCode to toCode. Same-code conversions
// return the amount unchanged without touching cache or network.
func (s *ConversionService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	from := strings.ToLower(fromCode)
	to := strings.ToLower(toCode)
	if from == to {
		return amount, nil
	}

	rate, err := s.pairRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// ConvertToUserCurrency converts amount into the user's configured currency,
// falling back to the system default currency when the user has none.
func (s *ConversionService) ConvertToUserCurrency(ctx context.Context, amount decimal.Decimal, fromCode, userID string) (decimal.Decimal, error) {
	target, err := s.resolveUserCurrency(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.Convert(ctx, amount, fromCode, target)
}

// ConvertFromUserCurrency converts amount out of the user's configured
// currency, falling back to the system default currency.
func (s *ConversionService) ConvertFromUserCurrency(ctx context.Context, amount decimal.Decimal, toCode, userID string) (decimal.Decimal, error) {
	source, err := s.resolveUserCurrency(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.Convert(ctx, amount, source, toCode)
}

// pairRate resolves the scalar rate for an ordered pair, caching the result.
func (s *ConversionService) pairRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	key := cache.ConversionKey(from, to)
	if raw, ok := s.rateCache.Get(ctx, key); ok {
		var rate decimal.Decimal
		if err := json.Unmarshal(raw, &rate); err == nil {
			return rate, nil
		}
		s.rateCache.Invalidate(ctx, key)
	}

	fromTable, err := s.fetcher.FetchRates(ctx, from, nil)
	if err != nil {
		return decimal.Zero, err
	}

	rate, ok := fromTable[to]
	if !ok {
		rate, err = s.triangulate(ctx, fromTable, from, to)
		if err != nil {
			return decimal.Zero, err
		}
	}

	if raw, err := json.Marshal(rate); err == nil {
		s.rateCache.Set(ctx, key, raw, cache.DefaultTTL)
	}
	return rate, nil
}

// triangulate composes from->usd and usd->to. A leg whose rate is missing
// from its table contributes a factor of 1; this can understate conversions
// and is logged so operators can spot it.
func (s *ConversionService) triangulate(ctx context.Context, fromTable map[string]decimal.Decimal, from, to string) (decimal.Decimal, error) {
	legToUSD := decimal.NewFromInt(1)
	if from != usdCode {
		if rate, ok := fromTable[usdCode]; ok {
			legToUSD = rate
		} else {
			s.logger.Warn("missing usd rate, defaulting leg to 1", slog.String("from", from))
		}
	}

	legFromUSD := decimal.NewFromInt(1)
	if to != usdCode {
		usdTable, err := s.fetcher.FetchRates(ctx, usdCode, nil)
		if err != nil {
			return decimal.Zero, err
		}
		if rate, ok := usdTable[to]; ok {
			legFromUSD = rate
		} else {
			s.logger.Warn("missing target rate in usd table, defaulting leg to 1", slog.String("to", to))
		}
	}

	return legToUSD.Mul(legFromUSD), nil
}

// resolveUserCurrency returns the user's configured currency code, falling
// back to the default currency when the user or their preference is unset.
func (s *ConversionService) resolveUserCurrency(ctx context.Context, userID string) (string, error) {
	if userID != "" {
		code, err := s.userSettings.FindUserCurrencyCode(ctx, userID)
		if err == nil && code != "" {
			return code, nil
		}
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("failed to resolve currency for user %s: %w", userID, err)
		}
	}

	defaultCurrency, err := s.currencyRepo.FindDefaultCurrency(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.ErrNoBaseCurrency
		}
		return "", fmt.Errorf("failed to resolve default currency: %w", err)
	}
	return defaultCurrency.Code, nil
}

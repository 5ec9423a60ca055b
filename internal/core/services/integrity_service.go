package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/finbook/currency_sync/internal/core/domain"
	portsrepo "github.com/finbook/currency_sync/internal/core/ports/repositories"
	"github.com/finbook/currency_sync/internal/dto"
)

// IntegrityService scans the currency store for invariant violations and
// repairs the ones with a safe automatic fix: duplicate rows and multiple
// default flags. A missing default is repaired only when a USD row exists to
// promote; non-positive rates are flagged without a fix because no safe
// synthetic value exists.
type IntegrityService struct {
	currencyRepo portsrepo.CurrencyRepositoryFacade
	logger       *slog.Logger
}

// NewIntegrityService creates a new IntegrityService.
func NewIntegrityService(currencyRepo portsrepo.CurrencyRepositoryFacade, logger *slog.Logger) *IntegrityService {
	return &IntegrityService{currencyRepo: currencyRepo, logger: logger}
}

// ValidateCurrencyIntegrity runs the four checks unconditionally; a finding
// in one check never skips the others. The report's status is healthy iff no
// issue was found, so a run that applied fixes reports issues_found and the
// next run comes back healthy.
func (s *IntegrityService) ValidateCurrencyIntegrity(ctx context.Context) (*dto.IntegrityReport, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies for integrity check: %w", err)
	}

	report := &dto.IntegrityReport{
		IssuesFound:  []string{},
		FixesApplied: []string{},
	}

	remaining := s.checkDuplicateCodes(ctx, currencies, report)
	remaining = s.checkMissingDefault(ctx, remaining, report)
	remaining = s.checkMultipleDefaults(ctx, remaining, report)
	s.checkInvalidRates(remaining, report)

	if len(report.IssuesFound) == 0 {
		report.Status = dto.IntegrityStatusHealthy
	} else {
		report.Status = dto.IntegrityStatusIssuesFound
	}
	return report, nil
}

// checkDuplicateCodes deletes all but the lowest-ID row for every duplicated
// code and returns the surviving set.
func (s *IntegrityService) checkDuplicateCodes(ctx context.Context, currencies []domain.Currency, report *dto.IntegrityReport) []domain.Currency {
	byCode := make(map[string][]domain.Currency)
	for _, currency := range currencies {
		code := strings.ToUpper(currency.Code)
		byCode[code] = append(byCode[code], currency)
	}

	deleted := make(map[int64]bool)
	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		group := byCode[code]
		if len(group) < 2 {
			continue
		}
		report.IssuesFound = append(report.IssuesFound,
			fmt.Sprintf("currency code %s appears %d times", code, len(group)))

		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		keep := group[0]
		for _, duplicate := range group[1:] {
			if err := s.currencyRepo.DeleteCurrencyByID(ctx, duplicate.ID); err != nil {
				s.logger.Warn("failed to delete duplicate currency",
					slog.String("code", code), slog.Int64("id", duplicate.ID),
					slog.String("error", err.Error()))
				report.IssuesFound = append(report.IssuesFound,
					fmt.Sprintf("failed to remove duplicate %s row ID %d", code, duplicate.ID))
				continue
			}
			deleted[duplicate.ID] = true
			report.FixesApplied = append(report.FixesApplied,
				fmt.Sprintf("removed duplicate %s row ID %d, kept ID %d", code, duplicate.ID, keep.ID))
		}
	}

	if len(deleted) == 0 {
		return currencies
	}
	remaining := make([]domain.Currency, 0, len(currencies)-len(deleted))
	for _, currency := range currencies {
		if !deleted[currency.ID] {
			remaining = append(remaining, currency)
		}
	}
	return remaining
}

// checkMissingDefault promotes a USD row when no row carries the default
// flag. Without a USD row the issue is unresolvable by this service.
func (s *IntegrityService) checkMissingDefault(ctx context.Context, currencies []domain.Currency, report *dto.IntegrityReport) []domain.Currency {
	for _, currency := range currencies {
		if currency.IsDefault {
			return currencies
		}
	}

	for i, currency := range currencies {
		if strings.EqualFold(currency.Code, "USD") {
			report.IssuesFound = append(report.IssuesFound, "no default currency configured")
			if err := s.currencyRepo.SetDefaultFlag(ctx, currency.ID, true); err != nil {
				s.logger.Warn("failed to promote USD to default",
					slog.Int64("id", currency.ID), slog.String("error", err.Error()))
				report.IssuesFound = append(report.IssuesFound,
					fmt.Sprintf("failed to set USD row ID %d as default", currency.ID))
				return currencies
			}
			currencies[i].IsDefault = true
			report.FixesApplied = append(report.FixesApplied,
				fmt.Sprintf("set USD row ID %d as default currency", currency.ID))
			return currencies
		}
	}

	if len(currencies) > 0 {
		report.IssuesFound = append(report.IssuesFound,
			"no default currency configured and no USD row to promote")
	}
	return currencies
}

// checkMultipleDefaults clears the default flag on every flagged row except
// the lowest-ID one.
func (s *IntegrityService) checkMultipleDefaults(ctx context.Context, currencies []domain.Currency, report *dto.IntegrityReport) []domain.Currency {
	var defaults []int
	for i, currency := range currencies {
		if currency.IsDefault {
			defaults = append(defaults, i)
		}
	}
	if len(defaults) < 2 {
		return currencies
	}

	report.IssuesFound = append(report.IssuesFound,
		fmt.Sprintf("%d currencies carry the default flag", len(defaults)))

	sort.Slice(defaults, func(i, j int) bool {
		return currencies[defaults[i]].ID < currencies[defaults[j]].ID
	})
	keep := currencies[defaults[0]]
	for _, idx := range defaults[1:] {
		extra := currencies[idx]
		if err := s.currencyRepo.SetDefaultFlag(ctx, extra.ID, false); err != nil {
			s.logger.Warn("failed to clear extra default flag",
				slog.String("code", extra.Code), slog.Int64("id", extra.ID),
				slog.String("error", err.Error()))
			report.IssuesFound = append(report.IssuesFound,
				fmt.Sprintf("failed to clear default flag on %s row ID %d", extra.Code, extra.ID))
			continue
		}
		currencies[idx].IsDefault = false
		report.FixesApplied = append(report.FixesApplied,
			fmt.Sprintf("cleared default flag on %s row ID %d, kept ID %d", extra.Code, extra.ID, keep.ID))
	}
	return currencies
}

// checkInvalidRates flags non-default rows with a non-positive rate. There is
// no safe repair value, so this check never writes.
func (s *IntegrityService) checkInvalidRates(currencies []domain.Currency, report *dto.IntegrityReport) {
	invalid := 0
	for _, currency := range currencies {
		if !currency.IsDefault && !currency.ExchangeRate.IsPositive() {
			invalid++
		}
	}
	if invalid > 0 {
		report.IssuesFound = append(report.IssuesFound,
			fmt.Sprintf("%d non-default currencies have a non-positive exchange rate", invalid))
	}
}

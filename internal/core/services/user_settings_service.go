package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finbook/currency_sync/internal/apperrors"
	portsrepo "github.com/finbook/currency_sync/internal/core/ports/repositories"
)

// UserSettingsService manages per-user currency preferences. Preferences feed
// the conversion service's user-currency resolution.
type UserSettingsService struct {
	userSettings portsrepo.UserSettingsRepositoryFacade
	currencyRepo portsrepo.CurrencyReader
}

// NewUserSettingsService creates a new UserSettingsService.
func NewUserSettingsService(userSettings portsrepo.UserSettingsRepositoryFacade, currencyRepo portsrepo.CurrencyReader) *UserSettingsService {
	return &UserSettingsService{userSettings: userSettings, currencyRepo: currencyRepo}
}

// GetUserCurrency returns the currency code configured for the user.
func (s *UserSettingsService) GetUserCurrency(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}

	code, err := s.userSettings.FindUserCurrencyCode(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to get currency for user %s: %w", userID, err)
	}
	return code, nil
}

// SetUserCurrency stores the user's preferred currency after checking the
// code refers to a currency row that actually exists.
func (s *UserSettingsService) SetUserCurrency(ctx context.Context, userID, currencyCode string) error {
	if userID == "" {
		return fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}

	currencyCode = strings.ToUpper(currencyCode)
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: currency %s is not configured", apperrors.ErrValidation, currencyCode)
		}
		return fmt.Errorf("failed to verify currency %s: %w", currencyCode, err)
	}

	if err := s.userSettings.SaveUserCurrencyCode(ctx, userID, currencyCode); err != nil {
		return fmt.Errorf("failed to save currency for user %s: %w", userID, err)
	}
	return nil
}

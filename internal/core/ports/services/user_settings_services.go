package services

import "context"

// UserSettingsSvc manages per-user currency preferences. The conversion
// service reads the same preference when resolving a user's currency.
type UserSettingsSvc interface {
	// GetUserCurrency returns the currency code configured for the user, or
	// apperrors.ErrNotFound when the user has no preference stored.
	GetUserCurrency(ctx context.Context, userID string) (string, error)

	// SetUserCurrency stores or replaces the user's preferred currency. The
	// code must belong to a currency present in the store.
	SetUserCurrency(ctx context.Context, userID, currencyCode string) error
}

package repositories

import "context"

// UserSettingsReader defines read operations for per-user preferences.
type UserSettingsReader interface {
	// FindUserCurrencyCode returns the currency code configured for the given
	// user, or apperrors.ErrNotFound when the user has no preference stored.
	FindUserCurrencyCode(ctx context.Context, userID string) (string, error)
}

// UserSettingsWriter defines write operations for per-user preferences.
type UserSettingsWriter interface {
	// SaveUserCurrencyCode stores or replaces the user's preferred currency.
	SaveUserCurrencyCode(ctx context.Context, userID, currencyCode string) error
}

// UserSettingsRepositoryFacade combines the user settings interfaces.
type UserSettingsRepositoryFacade interface {
	UserSettingsReader
	UserSettingsWriter
}

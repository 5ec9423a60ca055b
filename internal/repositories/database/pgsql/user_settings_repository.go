package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbook/currency_sync/internal/apperrors"
	portsrepo "github.com/finbook/currency_sync/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUserSettingsRepository struct {
	BaseRepository
}

// newPgxUserSettingsRepository creates a new repository for per-user preferences.
func newPgxUserSettingsRepository(pool *pgxpool.Pool) portsrepo.UserSettingsRepositoryFacade {
	return &PgxUserSettingsRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.UserSettingsRepositoryFacade = (*PgxUserSettingsRepository)(nil)

// FindUserCurrencyCode returns the currency code configured for a user.
func (r *PgxUserSettingsRepository) FindUserCurrencyCode(ctx context.Context, userID string) (string, error) {
	var code string
	err := r.Pool.QueryRow(ctx,
		`SELECT currency_code FROM user_settings WHERE user_id = $1;`, userID,
	).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to find currency for user %s: %w", userID, err)
	}
	return code, nil
}

// SaveUserCurrencyCode stores or replaces the user's preferred currency.
func (r *PgxUserSettingsRepository) SaveUserCurrencyCode(ctx context.Context, userID, currencyCode string) error {
	query := `
		INSERT INTO user_settings (user_id, currency_code)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET currency_code = EXCLUDED.currency_code;
	`
	if _, err := r.Pool.Exec(ctx, query, userID, currencyCode); err != nil {
		return fmt.Errorf("failed to save currency for user %s: %w", userID, err)
	}
	return nil
}

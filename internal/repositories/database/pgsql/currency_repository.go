package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbook/currency_sync/internal/apperrors"
	"github.com/finbook/currency_sync/internal/core/domain"
	portsrepo "github.com/finbook/currency_sync/internal/core/ports/repositories"
	"github.com/finbook/currency_sync/internal/models"
	"github.com/finbook/currency_sync/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const currencyColumns = `
	id, code, name, symbol, display_format, decimal_places,
	exchange_rate, is_default, last_updated,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxCurrencyRepository struct {
	BaseRepository
}

// newPgxCurrencyRepository creates a new repository for currency data.
func newPgxCurrencyRepository(pool *pgxpool.Pool) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

// SaveCurrency inserts a new currency row. The code column carries no unique
// constraint on purpose: duplicate rows are an integrity violation repaired
// by the integrity checker, not a write-time failure.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	modelCurr := mapping.ToModelCurrency(currency)

	query := `
		INSERT INTO currencies (code, name, symbol, display_format, decimal_places, exchange_rate, is_default, last_updated, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelCurr.Code,
		modelCurr.Name,
		modelCurr.Symbol,
		modelCurr.DisplayFormat,
		modelCurr.DecimalPlaces,
		modelCurr.ExchangeRate,
		modelCurr.IsDefault,
		modelCurr.LastUpdated,
		modelCurr.CreatedAt,
		modelCurr.CreatedBy,
		modelCurr.LastUpdatedAt,
		modelCurr.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save currency %s: %w", modelCurr.Code, err)
	}
	return nil
}

// FindCurrencyByCode retrieves a currency by its 3-letter code. When
// duplicates exist the lowest-ID row wins, matching the integrity checker's
// keep rule.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM currencies
		WHERE code = $1
		ORDER BY id
		LIMIT 1;
	`, currencyColumns)

	modelCurr, err := r.scanCurrencyRow(r.Pool.QueryRow(ctx, query, currencyCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find currency by code %s: %w", currencyCode, err)
	}

	domainCurr := mapping.ToDomainCurrency(*modelCurr)
	return &domainCurr, nil
}

// FindDefaultCurrency retrieves the row carrying the default flag.
func (r *PgxCurrencyRepository) FindDefaultCurrency(ctx context.Context) (*domain.Currency, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM currencies
		WHERE is_default
		ORDER BY id
		LIMIT 1;
	`, currencyColumns)

	modelCurr, err := r.scanCurrencyRow(r.Pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find default currency: %w", err)
	}

	domainCurr := mapping.ToDomainCurrency(*modelCurr)
	return &domainCurr, nil
}

// ListCurrencies retrieves all currency rows ordered by ID.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM currencies
		ORDER BY id;
	`, currencyColumns)

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	modelCurrencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Currency, error) {
		var currency models.Currency
		err := row.Scan(
			&currency.ID,
			&currency.Code,
			&currency.Name,
			&currency.Symbol,
			&currency.DisplayFormat,
			&currency.DecimalPlaces,
			&currency.ExchangeRate,
			&currency.IsDefault,
			&currency.LastUpdated,
			&currency.CreatedAt,
			&currency.CreatedBy,
			&currency.LastUpdatedAt,
			&currency.LastUpdatedBy,
		)
		return currency, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan currencies: %w", err)
	}

	return mapping.ToDomainCurrencySlice(modelCurrencies), nil
}

// CountCurrencies returns the total number of currency rows.
func (r *PgxCurrencyRepository) CountCurrencies(ctx context.Context) (int64, error) {
	var count int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM currencies;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count currencies: %w", err)
	}
	return count, nil
}

// UpdateRate writes a fresh rate onto one row. GREATEST keeps last_updated
// monotone when an overlapping run already wrote a newer timestamp.
func (r *PgxCurrencyRepository) UpdateRate(ctx context.Context, currencyID int64, rate decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE currencies
		SET exchange_rate = $2,
		    last_updated = GREATEST(COALESCE(last_updated, $3), $3),
		    last_updated_at = $3
		WHERE id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, currencyID, rate, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update rate for currency %d: %w", currencyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetDefaultFlag sets or clears the default flag on one row.
func (r *PgxCurrencyRepository) SetDefaultFlag(ctx context.Context, currencyID int64, isDefault bool) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE currencies SET is_default = $2 WHERE id = $1;`, currencyID, isDefault)
	if err != nil {
		return fmt.Errorf("failed to set default flag on currency %d: %w", currencyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteCurrencyByID removes one row. Only the integrity checker calls this,
// for duplicate cleanup.
func (r *PgxCurrencyRepository) DeleteCurrencyByID(ctx context.Context, currencyID int64) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM currencies WHERE id = $1;`, currencyID)
	if err != nil {
		return fmt.Errorf("failed to delete currency %d: %w", currencyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxCurrencyRepository) scanCurrencyRow(row pgx.Row) (*models.Currency, error) {
	var currency models.Currency
	err := row.Scan(
		&currency.ID,
		&currency.Code,
		&currency.Name,
		&currency.Symbol,
		&currency.DisplayFormat,
		&currency.DecimalPlaces,
		&currency.ExchangeRate,
		&currency.IsDefault,
		&currency.LastUpdated,
		&currency.CreatedAt,
		&currency.CreatedBy,
		&currency.LastUpdatedAt,
		&currency.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &currency, nil
}

package pgsql

import (
	portsrepo "github.com/finbook/currency_sync/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CurrencyRepo:     newPgxCurrencyRepository(dbPool),
		UserSettingsRepo: newPgxUserSettingsRepository(dbPool),
	}
}

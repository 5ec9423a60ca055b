package services

import (
	"log/slog"
	"time"

	"github.com/finbook/currency_sync/internal/core/ports"
	portsrepo "github.com/finbook/currency_sync/internal/core/ports/repositories"
	portssvc "github.com/finbook/currency_sync/internal/core/ports/services"
)

// ContainerDeps holds everything needed to build the service container.
type ContainerDeps struct {
	CurrencyRepo       portsrepo.CurrencyRepositoryFacade
	UserSettingsRepo   portsrepo.UserSettingsRepositoryFacade
	RateCache          ports.RateCache
	Endpoints          []string
	HTTPTimeout        time.Duration
	CacheTTL           time.Duration
	StalenessThreshold time.Duration
	Logger             *slog.Logger
}

// NewServiceContainer wires the concrete services into the facade container
// used by the handlers and the CLI.
func NewServiceContainer(deps ContainerDeps) *portssvc.ServiceContainer {
	fetcher := NewRateFetcherService(deps.Endpoints, deps.HTTPTimeout, deps.RateCache, deps.CacheTTL, deps.Logger)
	updater := NewRateUpdateService(deps.CurrencyRepo, fetcher, deps.RateCache, deps.StalenessThreshold, deps.Logger)
	integrity := NewIntegrityService(deps.CurrencyRepo, deps.Logger)

	return &portssvc.ServiceContainer{
		Currency:     NewCurrencyService(deps.CurrencyRepo, fetcher),
		RateUpdater:  updater,
		Conversion:   NewConversionService(fetcher, deps.CurrencyRepo, deps.UserSettingsRepo, deps.RateCache, deps.Logger),
		Integrity:    integrity,
		Status:       NewStatusService(deps.CurrencyRepo, fetcher, updater, integrity, deps.RateCache, deps.CacheTTL),
		UserSettings: NewUserSettingsService(deps.UserSettingsRepo, deps.CurrencyRepo),
	}
}

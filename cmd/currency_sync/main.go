package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/finbook/currency_sync/internal/core/services"
	"github.com/finbook/currency_sync/internal/handlers"
	"github.com/finbook/currency_sync/internal/middleware"
	"github.com/finbook/currency_sync/internal/platform/cache"
	"github.com/finbook/currency_sync/internal/repositories/database/pgsql"
	"github.com/finbook/currency_sync/pkg/config"
	"github.com/finbook/currency_sync/pkg/database"

	"github.com/finbook/currency_sync/internal/apperrors"
	"github.com/finbook/currency_sync/internal/core/ports"
	portssvc "github.com/finbook/currency_sync/internal/core/ports/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	command := "serve"
	args := []string{}
	if len(os.Args) > 1 {
		command = os.Args[1]
		args = os.Args[2:]
	}

	ctx := context.Background()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rateCache := buildRateCache(cfg, logger)
	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(services.ContainerDeps{
		CurrencyRepo:       repos.CurrencyRepo,
		UserSettingsRepo:   repos.UserSettingsRepo,
		RateCache:          rateCache,
		Endpoints:          cfg.RateEndpoints,
		HTTPTimeout:        cfg.HTTPTimeout,
		CacheTTL:           cfg.CacheTTL,
		StalenessThreshold: cfg.StalenessThreshold,
		Logger:             logger,
	})

	switch command {
	case "serve":
		runServe(cfg, container, logger)
	case "update":
		runUpdate(ctx, container, logger, args)
	case "status":
		runStatus(ctx, container, logger)
	case "integrity":
		runIntegrity(ctx, container, logger)
	case "seed":
		runSeed(ctx, container, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		fmt.Fprintln(os.Stderr, "usage: currency_sync [serve|update|status|integrity|seed]")
		os.Exit(2)
	}
}

// runServe starts the admin API and the hourly rate-update scheduler.
func runServe(cfg *config.Config, container *portssvc.ServiceContainer, logger *slog.Logger) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	rate, err := limiter.NewRateFromFormatted(cfg.APIRateLimit)
	if err != nil {
		logger.Error("Invalid API_RATE_LIMIT", slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memorystore.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, container)

	go runScheduler(context.Background(), container, cfg.UpdateInterval, logger)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runScheduler refetches rates whenever the staleness check says so. A manual
// `update` run bypasses the check entirely.
func runScheduler(ctx context.Context, container *portssvc.ServiceContainer, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		needed, err := container.RateUpdater.RatesNeedUpdate(ctx)
		if err != nil {
			logger.Error("Staleness check failed", slog.String("error", err.Error()))
			continue
		}
		if !needed {
			continue
		}

		result, err := container.RateUpdater.UpdateDatabaseRates(ctx, nil)
		if err != nil {
			logger.Error("Scheduled rate update failed", slog.String("error", err.Error()))
			continue
		}
		logger.Info("Scheduled rate update completed",
			slog.Int("updated", len(result.Updated)),
			slog.Int("failed", len(result.Failed)))
	}
}

// runUpdate forces a reconciliation. Partial failure exits zero; only a
// missing base currency or a full mirror outage is a failure exit.
func runUpdate(ctx context.Context, container *portssvc.ServiceContainer, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "preview changes without writing")
	currencies := fs.String("currencies", "", "comma-separated currency codes to update (default all)")
	_ = fs.Parse(args)

	var targets []string
	if *currencies != "" {
		for _, code := range strings.Split(*currencies, ",") {
			targets = append(targets, strings.TrimSpace(code))
		}
	}

	var err error
	var result any
	if *dryRun {
		result, err = container.RateUpdater.PreviewRates(ctx, targets)
	} else {
		result, err = container.RateUpdater.UpdateDatabaseRates(ctx, targets)
	}
	if err != nil {
		// Partial failures come back inside the result; an error here means
		// the whole run failed (no base currency or every mirror down).
		if errors.Is(err, apperrors.ErrNoBaseCurrency) {
			logger.Error("Rate update aborted: no default currency configured")
		} else {
			logger.Error("Rate update failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}

	printJSON(result, logger)
}

func runStatus(ctx context.Context, container *portssvc.ServiceContainer, logger *slog.Logger) {
	report, err := container.Status.GenerateStatusReport(ctx)
	if err != nil {
		logger.Error("Failed to generate status report", slog.String("error", err.Error()))
		os.Exit(1)
	}
	printJSON(report, logger)
}

func runIntegrity(ctx context.Context, container *portssvc.ServiceContainer, logger *slog.Logger) {
	report, err := container.Integrity.ValidateCurrencyIntegrity(ctx)
	if err != nil {
		logger.Error("Failed to run integrity check", slog.String("error", err.Error()))
		os.Exit(1)
	}
	printJSON(report, logger)
}

func runSeed(ctx context.Context, container *portssvc.ServiceContainer, logger *slog.Logger) {
	seeded, err := container.Currency.SeedDefaultCurrencies(ctx)
	if err != nil {
		logger.Error("Failed to seed currencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(seeded) == 0 {
		fmt.Println("currency store already populated, nothing seeded")
		return
	}
	fmt.Printf("seeded currencies: %s\n", strings.Join(seeded, ", "))
}

func buildRateCache(cfg *config.Config, logger *slog.Logger) ports.RateCache {
	if cfg.CacheDriver == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return cache.NewRedisCache(client, logger)
	}
	return cache.NewMemoryCache()
}

func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	// Open a temporary standard sql.DB connection for migrations, using the
	// pgx stdlib driver to stay compatible with the main pool.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

func printJSON(v any, logger *slog.Logger) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal output", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(string(out))
}

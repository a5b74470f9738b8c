package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appgenerator/waitlist-service/internal/app"
	"github.com/appgenerator/waitlist-service/internal/config"
	"github.com/appgenerator/waitlist-service/internal/database"
	"github.com/appgenerator/waitlist-service/migrations"
	"github.com/appgenerator/waitlist-service/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)
	migrateDirection := migrateCmd.String("direction", "up", "direction of migration (up/down)")

	bootLog := logger.New()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			migrateCmd.Parse(os.Args[2:])
			runMigrations(cfg, log, *migrateDirection)
			return
		case "worker":
			runWorker(cfg, log)
			return
		case "serve":
		default:
			log.Fatal().Str("command", os.Args[1]).Msg("Unknown command. Use 'serve', 'worker' or 'migrate'")
		}
	}

	runServer(cfg, log)
}

func runServer(cfg *config.Config, log zerolog.Logger) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}

	log.Info().Msg("Database connection established")

	application, err := app.New(cfg, log, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	go func() {
		if err := application.Run(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run application")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down Waitlist Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown gracefully")
	}

	log.Info().Msg("Waitlist Service stopped")
}

func runWorker(cfg *config.Config, log zerolog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := app.RunWorker(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Email worker failed")
	}

	log.Info().Msg("Email worker stopped")
}

func runMigrations(cfg *config.Config, log zerolog.Logger, direction string) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	migrator, err := database.NewMigrator(db, migrations.FS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrator")
	}
	defer migrator.Close()

	switch direction {
	case "up":
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Migrations applied successfully")
	case "down":
		if err := migrator.Down(); err != nil {
			log.Fatal().Err(err).Msg("Failed to rollback migrations")
		}
		log.Info().Msg("Migrations rolled back successfully")
	default:
		log.Fatal().Msg("Invalid migration direction. Use 'up' or 'down'")
	}

	if version, dirty, err := migrator.Version(); err == nil {
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Schema version")
	}
}

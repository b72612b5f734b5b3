package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github.com/baristalabs/barista/pkg/auth"
	"github.com/baristalabs/barista/pkg/buildinfo"
	"github.com/baristalabs/barista/pkg/config"
	"github.com/baristalabs/barista/pkg/drinks"
	"github.com/baristalabs/barista/pkg/server"
	"github.com/baristalabs/barista/pkg/utils"
)

var appLogger *utils.AppLogger

func main() {
	// Init the app logger object
	appLogger = utils.NewAppLogger(buildinfo.AppName, os.Stderr)

	// Load config
	err := loadConfig()
	if err != nil {
		var lce *loadConfigError
		if errors.As(err, &lce) {
			lce.LogFatal()
		} else {
			appLogger.Raw().Fatal().
				AnErr("error", err).
				Msg("Failed to load configuration")
		}
		return
	}

	appLogger.Raw().Info().
		Str("version", buildinfo.AppVersion).
		Str("build", buildinfo.BuildDescription).
		Bool("production", viper.GetBool(config.KeyProduction)).
		Msg("Starting barista")

	// The environment record is built once here and read-only afterwards
	env := config.FromViper()

	// Listen for SIGTERM and SIGINT in background to stop the context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

		<-ch
		appLogger.Raw().Info().Msg("Received interrupt signal. Shutting down…")
		cancel()
	}()

	// Create the drinks store
	var store drinks.Store
	dsn := viper.GetString(config.KeyDatabaseDSN)
	if dsn != "" {
		err = drinks.Migrate(dsn, viper.GetString(config.KeyMigrationsPath))
		if err != nil {
			appLogger.Raw().Fatal().
				AnErr("error", err).
				Msg("Cannot apply database migrations")
			return
		}

		var db *drinks.DB
		db, err = drinks.Open(ctx, dsn)
		if err != nil {
			appLogger.Raw().Fatal().
				AnErr("error", err).
				Msg("Cannot connect to the database")
			return
		}
		defer db.Close()
		store = drinks.NewSQLStore(db)
	} else {
		appLogger.Raw().Warn().Msg("No 'databaseDsn' found in the configuration: using the in-memory store")
		store = drinks.NewMemoryStore()
	}

	// Create the token verifier for the configured tenant
	verifier, err := auth.NewVerifier(ctx, env)
	if err != nil {
		appLogger.Raw().Fatal().
			AnErr("error", err).
			Msg("Cannot initialize the token verifier")
		return
	}

	// Create the Server object
	srv, err := server.NewServer(appLogger, store, verifier)
	if err != nil {
		appLogger.Raw().Fatal().
			AnErr("error", err).
			Msg("Cannot initialize the server")
		return
	}

	// Start the server in background and block until the server is shut down (gracefully)
	err = srv.Run(ctx)
	if err != nil {
		appLogger.Raw().Fatal().
			AnErr("error", err).
			Msg("Cannot start the server")
		return
	}
}

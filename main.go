package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/pocketguard/backend/internal/config"
	"github.com/pocketguard/backend/internal/controllers"
	"github.com/pocketguard/backend/internal/models"
	"github.com/pocketguard/backend/internal/router"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

//	@title			Pocketguard
//	@description	The backend for Pocketguard, a budgeting app for teens that blocks UPI payments beyond the budget.
//	@BasePath		/

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	gin.SetMode(cfg.Mode)

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	output := io.Writer(os.Stdout)
	if (cfg.LogFormat == "" && gin.IsDebugging()) || cfg.LogFormat == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	if err := connect(cfg.Database); err != nil {
		log.Fatal().Msg(err.Error())
	}

	co, err := controllers.New(cfg)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	r, teardown, err := router.Config(cfg)
	defer teardown()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	router.AttachRoutes(co, r.Group("/"), cfg)

	srv := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("address", cfg.ListenAddress).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped")
	}

	if sqlDB, err := models.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// connect opens the configured database.
func connect(cfg config.DatabaseConfig) error {
	if cfg.Driver == config.DriverPostgres {
		return models.ConnectPostgres(cfg.DSN())
	}

	if err := os.MkdirAll(cfg.DataDir, os.ModePerm); err != nil {
		return err
	}

	return models.Connect(cfg.DSN())
}

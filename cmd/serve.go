package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/pable/zeratul/internal/config"
	"github.com/pable/zeratul/internal/stats"
	"github.com/pable/zeratul/internal/storage"
	"github.com/pable/zeratul/internal/web"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the statistics as a read-only JSON API",
	Long: `Start an HTTP server exposing the dashboard, maps, games and player records
as JSON under /api, and the stored map thumbnails under media.url_prefix.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg, appLog),
		fx.Provide(provideStorage),
		fx.Provide(provideStats),
		fx.Provide(provideRouter),
		fx.Invoke(runServer),
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

func provideStorage(lc fx.Lifecycle, log zerolog.Logger) (*storage.DB, error) {
	db, err := openStorage()
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
	return db, nil
}

func provideStats(db *storage.DB, cfg *config.Config, log zerolog.Logger) *stats.Service {
	return stats.New(db, cfg.MapsURL(), log)
}

func provideRouter(svc *stats.Service, cfg *config.Config, log zerolog.Logger) *web.Router {
	return web.NewRouter(svc, web.Options{
		MediaRoot:   cfg.Media.Root,
		MediaPrefix: cfg.Media.URLPrefix,
		PageSize:    cfg.Server.PageSize,
	}, log)
}

func runServer(lc fx.Lifecycle, router *web.Router, cfg *config.Config, log zerolog.Logger) {
	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

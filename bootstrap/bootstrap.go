// Package bootstrap starts the HTTP server for both the api binary and weddingctl serve.
package bootstrap

import (
	"context"
	"errors"
	"time"

	"wedding-invitation/internal/config"
	"wedding-invitation/internal/interfaces/router"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

// Serve builds the app from cfg and listens on cfg.Port until ctx is cancelled,
// then drains in-flight requests and notifications.
func Serve(ctx context.Context, cfg *config.Config) error {
	app, deps, err := router.CreateApp(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Bool("redis", deps.Rdb != nil).
		Msg("server running")
	log.Info().Msgf("health check: http://localhost:%s/health/json", cfg.Port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wedding-invitation/bootstrap"
	"wedding-invitation/internal/config"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	config.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Serve(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

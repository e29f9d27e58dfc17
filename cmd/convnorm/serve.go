package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/convnorm/internal/api"
	"github.com/MikeSquared-Agency/convnorm/internal/config"
	"github.com/MikeSquared-Agency/convnorm/internal/hermes"
	"github.com/MikeSquared-Agency/convnorm/internal/normalize"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *cfg)
		},
	}
	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	return cmd
}

func serve(parent context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("convnorm starting", "port", cfg.Port)

	// NATS is optional; without it accepted files are not announced downstream.
	var events hermes.Publisher = hermes.Nop{}
	if cfg.NatsURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := hermes.NewClient(connectCtx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		cancel()
		if err != nil {
			return err
		}
		defer client.Close()
		events = client
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, file events will not be published")
	}

	srv, err := api.NewServer(api.Options{
		Port:           cfg.Port,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SeenFiles:      cfg.SeenFiles,
	}, normalize.NewService(slog.Default()), events, slog.Default())
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("convnorm stopped")
	return nil
}

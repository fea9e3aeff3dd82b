package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/randomplaygames97-coder/helperbot-pinger/config"
	"github.com/randomplaygames97-coder/helperbot-pinger/internal/handler"
	"github.com/randomplaygames97-coder/helperbot-pinger/internal/httpserver"
	"github.com/randomplaygames97-coder/helperbot-pinger/internal/prober"
	"github.com/randomplaygames97-coder/helperbot-pinger/internal/stats"
	"github.com/randomplaygames97-coder/helperbot-pinger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pingStats := stats.New()

	p := prober.New(
		cfg.Target.URL,
		cfg.Ping.Endpoints,
		cfg.Ping.IntervalSeconds,
		cfg.Ping.TimeoutSeconds,
		pingStats,
		log,
	)
	go p.Run(ctx)

	statusHandler := handler.NewStatusHandler(log, pingStats, cfg.Target.URL)

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(statusHandler))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Starting status server", slog.String("address", srv.Addr()))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting status server", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

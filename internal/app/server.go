package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"stanbot/config"
	"stanbot/internal/metrics"
	"stanbot/internal/quotes"
	"stanbot/internal/server/tcp"
	"stanbot/internal/session"
	"stanbot/internal/usecases"
)

const (
	ErrPowInit   = "failed to initialize pow"
	ErrRunServer = "failed server run"

	metricsShutdownTimeout = 5 * time.Second
)

// RunServer started server application
func RunServer(ctx context.Context) error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.Default()
	logger = logger.With("Service", cfg.Server.Name)

	powUsecase, err := usecases.NewPowUsecase(cfg.Pow.Difficulty)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrPowInit, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(reg)

	sampler := quotes.NewSampler(cfg.Quotes)
	if sampler.Empty() {
		logger.Warn("no quotes configured, serving fallback text")
	}
	quoteUsecase := usecases.NewQuoteUsecase(sampler, session.NewStore(cfg.SessionTTL), m)

	server := tcp.NewServer(
		&tcp.Config{
			Address:    cfg.Server.Addr,
			KeepAlive:  cfg.Server.KeepAlive,
			Deadline:   cfg.Server.Deadline,
			BufferSize: cfg.Server.BufferSize,
		},
		powUsecase,
		quoteUsecase,
		m,
		logger,
	)

	logger.Info("starting",
		"quotes", sampler.Len(),
		"pow_difficulty", cfg.Pow.Difficulty,
		"session_ttl", cfg.SessionTTL)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx)
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(ctx, cfg.MetricsAddr, m, logger)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", ErrRunServer, err)
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server started", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

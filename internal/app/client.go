package app

import (
	"context"
	"fmt"
	"log/slog"

	"stanbot/config"
	"stanbot/internal/client/tcp"
	"stanbot/internal/usecases"
)

// Connect loads the client configuration and opens a connection to the robot.
func Connect(ctx context.Context) (*tcp.Conn, error) {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.Default()
	logger = logger.With("Service", cfg.Name)

	client := tcp.NewClient(
		&tcp.Config{
			ServerAddr:     cfg.ServerAddr,
			ConnectTimeout: cfg.ConnectTimeout,
			RequestTimeout: cfg.RequestTimeout,
			RetryAttempts:  cfg.RetryAttempts,
			RetryDelay:     cfg.RetryDelay,
		},
		usecases.NewSolverUsecase(),
		logger,
	)

	conn, err := client.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return conn, nil
}

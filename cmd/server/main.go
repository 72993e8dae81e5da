package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stanbot/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	if err := app.RunServer(ctx); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

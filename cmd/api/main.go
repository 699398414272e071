package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"votable/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (votee kinds + document store + use cases).
// 3) Start HTTP server and, when enabled, the ratio refresh loop.
func main() {
	log.Println("votable api starting")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildAPI(ctx)
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("api shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(ctx); err != nil {
		log.Printf("votable api stopped with error: %v", err)
	}
}

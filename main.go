package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/R0SEWT/smartParkSystem/core/server"
	"github.com/R0SEWT/smartParkSystem/internal/db"
	"github.com/R0SEWT/smartParkSystem/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	srv, err := server.NewServer(
		server.WithMongo(cfg.MongoURI, db.DefaultDatabase),
		server.WithPostgres(cfg.PGConn, cfg.Projection),
		server.WithSchema(cfg.Schema),
		server.WithCORS(cfg.AllowedOrigins),
		server.WithPort(cfg.Port),
	)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received...")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	srv.Close()
	log.Println("Server shutdown complete")
}

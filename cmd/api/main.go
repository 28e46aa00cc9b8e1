package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tabml/app"
	"tabml/internal/api"
	"tabml/internal/config"
	"tabml/internal/dataset"

	"github.com/joho/godotenv"
)

// Headless JSON API: training and EDA over datasets already in the upload folder.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	loader := dataset.NewLoader(cfg.Storage.UploadDir)
	handler := api.NewApp(
		app.NewTrainingService(loader, cfg.Training),
		app.NewEDAService(loader),
	)

	srv := &http.Server{Addr: ":" + cfg.Server.APIPort, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown failed: %v", err)
		}
	}()

	log.Printf("Starting API server on :%s (datasets in %s)", cfg.Server.APIPort, cfg.Storage.UploadDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("API server failed: %v", err)
	}
	log.Println("API server stopped")
}

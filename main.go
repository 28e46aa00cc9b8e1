package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tabml/adapters/postgres"
	"tabml/app"
	"tabml/internal/config"
	"tabml/internal/dataset"
	apperrors "tabml/internal/errors"
	"tabml/internal/migration"
	"tabml/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

// initDatabase connects to PostgreSQL and brings the account schema up to date
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", appConfig.Database.URL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to connect to database")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, "failed to ping database")
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Accounts are optional; without a database the account routes answer 503.
	var accounts *app.AccountService
	if appConfig.Database.Enabled() {
		start := time.Now()
		db, err := initDatabase(ctx, appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		accounts = app.NewAccountService(postgres.NewUserRepository(db))
		log.Printf("Database ready in %.2fms", float64(time.Since(start).Nanoseconds())/1e6)
	} else {
		log.Println("DATABASE_URL not set, account routes disabled")
	}

	storage := dataset.NewLocalFileStorage(&dataset.StorageConfig{
		BasePath:    appConfig.Storage.UploadDir,
		MaxFileSize: appConfig.Storage.MaxUploadSize,
	})
	loader := dataset.NewLoaderWithStorage(storage)

	server, err := ui.NewServer(appConfig, ui.Services{
		Training: app.NewTrainingService(loader, appConfig.Training),
		EDA:      app.NewEDAService(loader),
		Accounts: accounts,
		Store:    storage,
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting tabml server on port %s (datasets in %s)", appConfig.Server.Port, storage.BasePath())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if appConfig.Profiling.Enabled {
		pprofServer := &http.Server{Addr: ":" + appConfig.Profiling.Port, Handler: http.DefaultServeMux}
		g.Go(func() error {
			log.Printf("Performance profiling server starting on :%s", appConfig.Profiling.Port)
			log.Printf("View profiles: go tool pprof -http=:8081 http://localhost:%s/debug/pprof/profile?seconds=30", appConfig.Profiling.Port)
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return pprofServer.Close()
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	httpadapter "mandi/internal/adapters/http"
	pg "mandi/internal/adapters/postgres"
	"mandi/internal/certscore"
	"mandi/internal/config"
	"mandi/internal/ports"
	certsvc "mandi/internal/services/certificates"
	farmsvc "mandi/internal/services/farms"
	certworker "mandi/internal/workers/certrunner"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()

	logger := newLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	if err != nil {
		logger.Warn("config", zap.Error(err))
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required for Postgres adapters")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pg.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Wire repositories to services (ports)
	var _ ports.FarmRepository = db
	var _ ports.CertificateRepository = db
	var _ ports.JobRepository = db

	// The farm-size table comes from an external CSV; a fixed fallback keeps
	// the engine scoring when the file is missing or malformed.
	farmSizes, err := certscore.LoadFarmSizeCategories(cfg.FarmSizeCategoriesCSV)
	if err != nil {
		logger.Warn("farm size categories unavailable, using fallback table", zap.Error(err))
	}
	engine := certscore.New(certscore.WithFarmSizeCategories(farmSizes))

	certificates := certsvc.New(engine, db, logger)
	farms := farmsvc.New(db)

	srv := httpadapter.New(farms, certificates, certificates, db, certificates, logger)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	// Optional background job workers
	if cfg.CertWorkers > 0 {
		certworker.Run(ctx, db, certificates, cfg.CertWorkers, 500*time.Millisecond, logger)
		logger.Info("certificate workers started", zap.Int("count", cfg.CertWorkers))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	logger.Info("listening", zap.String("addr", cfg.ListenAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(env string) *zap.Logger {
	if env == "production" {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}

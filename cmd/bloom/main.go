package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloom/internal/auth"
	"bloom/internal/config"
	"bloom/internal/db"
	httpx "bloom/internal/http"
	"bloom/internal/jobs"
	"bloom/internal/logging"
	"bloom/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	gdb, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	disk, err := storage.NewDisk(cfg.UploadDir, "/uploads")
	if err != nil {
		logger.Fatal("prepare upload dir", zap.Error(err))
	}

	jobsRepo := &jobs.Repo{DB: gdb}
	r := httpx.NewRouter(cfg, httpx.Deps{
		DB:      gdb,
		JWT:     auth.NewJWT(cfg.JWTSecret),
		Files:   disk,
		Cleanup: jobsRepo,
		Log:     logger,
	})

	// worker
	worker := &jobs.Worker{ID: "worker-1", Repo: jobsRepo, Files: disk, Log: logger.Named("jobs")}

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("db", cfg.DatabaseDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

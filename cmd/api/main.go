package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"access_review/internal/config"
	"access_review/internal/db"
	"access_review/internal/events"
	httpserver "access_review/internal/http"
	"access_review/internal/logging"
	"access_review/internal/review"
	"access_review/internal/seed"
	"access_review/internal/store"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFile)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	if cfg.Seed {
		data, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := seed.FirstSetup(ctx, st, data); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	hub := events.NewHub(64)
	svc := review.NewService(st, review.WithPublisher(hub), review.WithLogger(log))

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := httpserver.NewRouter(httpserver.Deps{
		Store:          st,
		Service:        svc,
		Hub:            hub,
		JWTSecret:      cfg.JWTSecret,
		AvatarBaseURL:  cfg.AvatarBaseURL,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.AppPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "in_memory", cfg.InMemory())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(cfg config.Config) (store.Store, error) {
	if cfg.InMemory() {
		slog.Warn("MYSQL_DSN not set, using in-memory store")
		return store.NewMemStore(), nil
	}
	gdb, err := db.Connect(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(gdb, store.Models()...); err != nil {
		return nil, err
	}
	return store.NewGormStore(gdb), nil
}

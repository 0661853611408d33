//	@title			Pixtag API
//	@version		1.0
//	@description	Image tagging and file upload service.
//
//	@host		localhost:8080
//	@BasePath	/api/v1

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pixtag/service/internal/app"
	"github.com/pixtag/service/internal/config"
	"github.com/pixtag/service/internal/logging"
)

func main() {
	logging.CreateLogger()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "err", err)
	}
	if cfg.IsProduction() {
		logging.UseJSON()
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		logging.Fatal("startup failed", "err", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logging.Info("server listening", "addr", srv.Addr, "env", cfg.AppEnv)
		logging.Info("swagger UI available", "url", "http://localhost:"+cfg.Port+"/swagger/")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "err", err)
		}
	}()

	<-quit
	logging.Info("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Fatal("forced shutdown", "err", err)
	}

	logging.Info("server stopped")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ss-uniforms/internal/auth"
	"ss-uniforms/internal/config"
	"ss-uniforms/internal/database"
	"ss-uniforms/internal/server"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := cfg.CheckSecret(); err != nil {
		log.WithError(err).Fatal("Refusing to start")
	}
	auth.SetSecret(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("Database unavailable")
	}

	h, err := server.Build(ctx, cfg, db)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialise services")
	}
	r, err := server.New(h)
	if err != nil {
		log.WithError(err).Fatal("Failed to build router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("url", cfg.BaseURL).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"corralon/internal/config"
	"corralon/internal/infra"
	"corralon/internal/router"
	"corralon/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title Corralon Tesoreria API
// @version 1.0
// @description Cheques, caja, cuentas corrientes y pagos combinados.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	shutdownTracing, err := infra.NewTracerProvider(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled: exporter init failed")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Notification workers are wired here (composition root); services only
	// see the Publisher side of the queue.
	smtpCB := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "smtp"})
	mailer := infra.NewMailer(cfg, smtpCB)
	emailWorker := worker.NewEmailWorker(mailer)
	worker.StartWorkerPool(ctx, rdb, emailWorker.Handlers(), cfg.WorkerPoolSize)

	svcs := router.NewServices(cfg, db, rdb)
	worker.StartVencimientosCron(ctx, worker.VencimientosCronConfig{
		Cheques:  svcs.Cheques,
		Queue:    worker.NewDispatcher(rdb),
		CB:       smtpCB,
		TenantID: cfg.VencimientosTenant,
		Email:    cfg.VencimientosEmail,
		Dias:     cfg.VencimientosAvisoDias,
	})

	r := router.New(cfg, db, rdb, smtpCB, svcs)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Int("port", cfg.Port).Msg("tesoreria backend listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel() // stop workers and cron

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracing shutdown")
	}
	log.Info().Msg("server exited")
}

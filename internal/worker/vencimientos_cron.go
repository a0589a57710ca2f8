package worker

// vencimientos_cron.go
// Background goroutine that once a day lists own checks still pending whose
// payment date falls within the notice window and enqueues a digest email.
// Skips the tick while the SMTP circuit breaker is open.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"corralon/internal/infra"
	"corralon/internal/model"

	"github.com/rs/zerolog/log"
)

const vencimientosTickInterval = 24 * time.Hour

// ChequesPorVencer is satisfied by service.ChequeService.
type ChequesPorVencer interface {
	PorVencer(ctx context.Context, tenantID string, dias int) ([]model.Cheque, error)
}

// EmailEnqueuer is satisfied by *Dispatcher.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// VencimientosCronConfig holds all dependencies for the digest goroutine.
type VencimientosCronConfig struct {
	Cheques  ChequesPorVencer
	Queue    EmailEnqueuer
	CB       *infra.CircuitBreaker
	TenantID string
	Email    string
	Dias     int
	Interval time.Duration // zero means daily
}

// StartVencimientosCron launches the digest goroutine. It does nothing when
// no tenant or recipient is configured. It respects ctx for graceful shutdown.
func StartVencimientosCron(ctx context.Context, cfg VencimientosCronConfig) {
	if cfg.TenantID == "" || cfg.Email == "" {
		log.Info().Msg("vencimientos_cron: disabled (VENCIMIENTOS_TENANT / VENCIMIENTOS_EMAIL vacios)")
		return
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = vencimientosTickInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Str("tenant", cfg.TenantID).Int("dias", cfg.Dias).Msg("vencimientos_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("vencimientos_cron: shutting down")
				return
			case <-ticker.C:
				avisarVencimientos(ctx, cfg)
			}
		}
	}()
}

func avisarVencimientos(ctx context.Context, cfg VencimientosCronConfig) {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("vencimientos_cron: circuit breaker is open, skipping tick")
		return
	}

	cheques, err := cfg.Cheques.PorVencer(ctx, cfg.TenantID, cfg.Dias)
	if err != nil {
		log.Error().Err(err).Msg("vencimientos_cron: failed to query pending checks")
		return
	}
	if len(cheques) == 0 {
		return
	}

	payload := EmailJobPayload{
		ToEmail: cfg.Email,
		Subject: fmt.Sprintf("%d cheques propios vencen en los proximos %d dias", len(cheques), cfg.Dias),
		Body:    digestVencimientos(cheques),
	}
	if err := cfg.Queue.EnqueueEmail(ctx, payload); err != nil {
		log.Error().Err(err).Msg("vencimientos_cron: failed to enqueue digest")
		return
	}
	log.Info().Int("count", len(cheques)).Msg("vencimientos_cron: digest enqueued")
}

func digestVencimientos(cheques []model.Cheque) string {
	var b strings.Builder
	b.WriteString("Cheques propios pendientes por vencer:\n\n")
	for i := range cheques {
		c := &cheques[i]
		destino := "-"
		switch {
		case c.Proveedor != nil:
			destino = c.Proveedor.RazonSocial
		case c.Destinatario != nil:
			destino = *c.Destinatario
		}
		fmt.Fprintf(&b, "%s  %s #%s  $%s  %s\n",
			c.FechaPago.Format("2006-01-02"), c.Banco, c.Numero, c.Monto.StringFixed(2), destino)
	}
	return b.String()
}

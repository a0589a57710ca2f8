package worker

import (
	"context"
	"encoding/json"
	"time"

	"corralon/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Notices that exhaust their attempts are parked in dlq:{queue} and never
// replayed automatically. Settlement notices keep the pago and tenant ids at
// the top level so a lost receipt can be traced back to its settlement.

const DLQPrefix = "dlq:"

type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	TenantID      string          `json:"tenant_id,omitempty"`
	PagoID        string          `json:"pago_id,omitempty"`
	Destinatario  string          `json:"destinatario,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// nuevaEntradaDLQ builds the dead-letter record of job, lifting the
// settlement references out of known payloads.
func nuevaEntradaDLQ(queue string, job Job, reason string, now time.Time) DLQEntry {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      now.UTC().Format(time.RFC3339),
		Attempts:      job.Attempts,
	}
	switch job.Type {
	case JobPagoRegistrado:
		var evt dto.PagoRegistradoEvento
		if json.Unmarshal(job.Payload, &evt) == nil {
			entry.TenantID = evt.TenantID
			entry.PagoID = evt.PagoID
			if evt.Entidad.Email != nil {
				entry.Destinatario = *evt.Entidad.Email
			}
		}
	case JobEmail:
		var p EmailJobPayload
		if json.Unmarshal(job.Payload, &p) == nil {
			entry.Destinatario = p.ToEmail
		}
	}
	return entry
}

// SendToDLQ parks a failed job.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	entry := nuevaEntradaDLQ(queue, job, reason, time.Now())

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}
	dlqKey := DLQPrefix + queue
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Str("pago_id", entry.PagoID).Msg("dlq: failed to push to DLQ")
		return
	}
	log.Warn().Func(entry.campos).Msg("dlq: notificacion descartada")
}

func (e DLQEntry) campos(ev *zerolog.Event) {
	ev.Str("queue", e.OriginalQueue).
		Str("job_type", e.JobType).
		Str("reason", e.Reason).
		Int("attempts", e.Attempts)
	if e.PagoID != "" {
		ev.Str("pago_id", e.PagoID).Str("tenant_id", e.TenantID)
	}
	if e.Destinatario != "" {
		ev.Str("to", e.Destinatario)
	}
}

// DLQLength returns the number of parked jobs; exposed on /health.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

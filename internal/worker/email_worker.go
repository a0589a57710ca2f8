package worker

// email_worker.go
// Handlers for notification jobs. Both end in a plain-text email through
// the circuit-broken SMTP mailer.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"corralon/internal/dto"
	"corralon/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the envelope of a JobEmail job.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender is satisfied by *infra.Mailer.
type Sender interface {
	Send(to, subject, body string) error
}

// EmailWorker turns notification jobs into emails.
type EmailWorker struct {
	mailer Sender
}

func NewEmailWorker(mailer Sender) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Handlers returns the job-type registry consumed by StartWorkerPool.
func (w *EmailWorker) Handlers() map[string]Handler {
	return map[string]Handler{
		JobEmail:          w.ProcessEmail,
		JobPagoRegistrado: w.ProcessPagoRegistrado,
	}
}

// ProcessEmail sends a queued plain email.
func (w *EmailWorker) ProcessEmail(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil // malformed payloads never succeed on retry
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}
	return w.send(payload.ToEmail, payload.Subject, payload.Body)
}

// ProcessPagoRegistrado emails the counterparty a settlement receipt when
// it has an address on file.
func (w *EmailWorker) ProcessPagoRegistrado(_ context.Context, raw json.RawMessage) error {
	var evt dto.PagoRegistradoEvento
	if err := json.Unmarshal(raw, &evt); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid pago.registrado payload")
		return nil
	}
	if evt.Entidad.Email == nil || *evt.Entidad.Email == "" {
		log.Debug().Str("pago_id", evt.PagoID).Msg("email_worker: entidad sin email, skipping")
		return nil
	}

	subject := fmt.Sprintf("Comprobante de pago %s", evt.Fecha)
	body := fmt.Sprintf("Hola %s,\n\nRegistramos un pago por $%s el %s.\n\n%s\n\nReferencia: %s\n",
		evt.Entidad.Nombre, evt.Total.StringFixed(2), evt.Fecha, evt.Detalle, evt.PagoID)
	return w.send(*evt.Entidad.Email, subject, body)
}

func (w *EmailWorker) send(to, subject, body string) error {
	err := w.mailer.Send(to, subject, body)
	switch {
	case err == nil:
		log.Info().Str("to", to).Msg("email_worker: email sent")
		return nil
	case errors.Is(err, infra.ErrMailerDisabled):
		log.Debug().Str("to", to).Msg("email_worker: mailer disabled, dropping")
		return nil
	default:
		log.Error().Err(err).Str("to", to).Msg("email_worker: failed to send email")
		return err
	}
}

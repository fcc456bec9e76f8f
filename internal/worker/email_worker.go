package worker

// email_worker.go
// Processes email jobs from QueueEmail. Sends the invoice PDF through the
// SMTP circuit breaker and records the delivery outcome on the invoice.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ciprianbratila/ortho-orders/internal/infra"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxDeliveryRetries caps how often a failed invoice email is retried before
// it goes to the dead letter queue.
const MaxDeliveryRetries = 5

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	InvoiceID string `json:"invoice_id"`
	ToEmail   string `json:"to_email"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	PDFPath   string `json:"pdf_path"`
}

type EmailWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
	repo   repository.InvoiceRepository
}

func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, repo repository.InvoiceRepository) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb, repo: repo}
}

// Process sends the invoice email through the circuit breaker and updates
// the delivery state. Failures schedule a retry via next_retry_at; the cron
// picks them up later.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return
	}
	invoiceID, err := uuid.Parse(payload.InvoiceID)
	if err != nil {
		log.Error().Str("invoice_id", payload.InvoiceID).Msg("email_worker: invalid invoice_id")
		return
	}

	inv, err := w.repo.FindByID(ctx, invoiceID)
	if err != nil {
		log.Error().Err(err).Str("invoice_id", payload.InvoiceID).Msg("email_worker: invoice not found")
		return
	}

	sendErr := w.cb.Execute(func() error {
		return w.mailer.SendInvoice(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	})
	if sendErr == nil {
		if err := w.repo.UpdateDelivery(ctx, invoiceID, model.DeliverySent, inv.RetryCount, nil, nil); err != nil {
			log.Error().Err(err).Str("invoice", inv.Number).Msg("email_worker: failed to record delivery")
		}
		log.Info().Str("invoice", inv.Number).Str("to", payload.ToEmail).Msg("email_worker: invoice sent")
		return
	}

	retryCount := inv.RetryCount + 1
	errMsg := sendErr.Error()
	nextRetry := time.Now().Add(deliveryBackoff(retryCount))
	if err := w.repo.UpdateDelivery(ctx, invoiceID, model.DeliveryFailed, retryCount, &nextRetry, &errMsg); err != nil {
		log.Error().Err(err).Str("invoice", inv.Number).Msg("email_worker: failed to record failure")
		return
	}
	log.Warn().
		Err(sendErr).
		Str("invoice", inv.Number).
		Int("retry_count", retryCount).
		Time("next_retry_at", nextRetry).
		Msg("email_worker: delivery failed, retry scheduled")
}

// deliveryBackoff returns the wait before retry n: 1m, 2m, 4m, 8m…
func deliveryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	return time.Duration(1<<uint(retryCount-1)) * time.Minute
}

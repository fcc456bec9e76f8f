package worker

// retry_cron.go
// Background goroutine that periodically re-attempts delivery of invoices
// stuck in delivery_status='failed' with a next_retry_at in the past.
// Uses the Circuit Breaker state to avoid hammering a downed SMTP relay.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ciprianbratila/ortho-orders/internal/infra"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	InvoiceRepo repository.InvoiceRepository
	Dispatcher  *Dispatcher
	CB          *infra.CircuitBreaker
	RDB         *redis.Client
	CompanyName string
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries failed deliveries, and re-enqueues them through the worker pool.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — retrying now would only trip it harder
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	invoices, err := cfg.InvoiceRepo.ListPendingDelivery(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending deliveries")
		return
	}
	if len(invoices) == 0 {
		return
	}

	log.Info().Int("count", len(invoices)).Msg("retry_cron: processing failed deliveries")

	for i := range invoices {
		inv := &invoices[i]

		if inv.RetryCount >= MaxDeliveryRetries {
			// Give up: park the invoice and leave a DLQ entry for inspection.
			if err := cfg.InvoiceRepo.UpdateDelivery(ctx, inv.ID, model.DeliveryFailed, inv.RetryCount, nil, inv.LastError); err != nil {
				log.Error().Err(err).Str("invoice", inv.Number).Msg("retry_cron: failed to park invoice")
				continue
			}
			payload, _ := json.Marshal(EmailJobPayload{InvoiceID: inv.ID.String()})
			reason := fmt.Sprintf("max delivery retries (%d) exceeded", MaxDeliveryRetries)
			if inv.LastError != nil {
				reason += ": " + *inv.LastError
			}
			SendToDLQ(ctx, cfg.RDB, QueueEmail, "email", payload, reason, inv.RetryCount)
			continue
		}

		if inv.EmailTo == nil || *inv.EmailTo == "" || inv.PDFPath == nil {
			continue
		}
		job := EmailJobPayload{
			InvoiceID: inv.ID.String(),
			ToEmail:   *inv.EmailTo,
			Subject:   fmt.Sprintf("%s — Invoice %s", cfg.CompanyName, inv.Number),
			Body: fmt.Sprintf("Please find attached invoice %s for order %s.\nBalance due: %s",
				inv.Number, inv.OrderNumber, inv.Balance.StringFixed(2)),
			PDFPath: *inv.PDFPath,
		}
		if err := cfg.Dispatcher.EnqueueEmail(ctx, job); err != nil {
			log.Error().Err(err).Str("invoice", inv.Number).Msg("retry_cron: failed to re-enqueue email")
			continue
		}
		// Clear next_retry_at so the next tick does not enqueue a duplicate;
		// the email worker reschedules on failure.
		if err := cfg.InvoiceRepo.UpdateDelivery(ctx, inv.ID, model.DeliveryFailed, inv.RetryCount, nil, inv.LastError); err != nil {
			log.Error().Err(err).Str("invoice", inv.Number).Msg("retry_cron: failed to clear retry marker")
		}
		log.Info().
			Str("invoice", inv.Number).
			Int("retry_count", inv.RetryCount).
			Msg("retry_cron: delivery re-enqueued")
	}
}

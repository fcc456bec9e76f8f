package worker

// invoice_worker.go
// Processes PDF generation jobs from QueueInvoice. Renders the invoice PDF,
// stores its path, then hands delivery off to the email queue when the
// invoice has a recipient.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ciprianbratila/ortho-orders/internal/infra"
	"github.com/ciprianbratila/ortho-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InvoiceJobPayload is the job envelope sent to QueueInvoice.
type InvoiceJobPayload struct {
	InvoiceID string `json:"invoice_id"`
}

type InvoiceWorker struct {
	repo           repository.InvoiceRepository
	dispatcher     *Dispatcher
	companyName    string
	pdfStoragePath string
}

func NewInvoiceWorker(
	repo repository.InvoiceRepository,
	dispatcher *Dispatcher,
	companyName string,
	pdfStoragePath string,
) *InvoiceWorker {
	return &InvoiceWorker{
		repo:           repo,
		dispatcher:     dispatcher,
		companyName:    companyName,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single invoice job:
//  1. Fetch the invoice with its lines
//  2. Generate the PDF and store its path
//  3. Enqueue an email job when the invoice has a recipient
func (w *InvoiceWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload InvoiceJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("invoice_worker: invalid payload")
		return
	}
	invoiceID, err := uuid.Parse(payload.InvoiceID)
	if err != nil {
		log.Error().Str("invoice_id", payload.InvoiceID).Msg("invoice_worker: invalid invoice_id")
		return
	}

	inv, err := w.repo.FindByID(ctx, invoiceID)
	if err != nil {
		log.Error().Err(err).Str("invoice_id", payload.InvoiceID).Msg("invoice_worker: invoice not found")
		return
	}

	pdfPath, err := infra.GenerateInvoicePDF(inv, w.companyName, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("invoice", inv.Number).Msg("invoice_worker: PDF generation failed")
		return
	}
	if err := w.repo.UpdatePDFPath(ctx, invoiceID, pdfPath); err != nil {
		log.Error().Err(err).Str("invoice", inv.Number).Msg("invoice_worker: failed to store PDF path")
		return
	}
	log.Info().Str("invoice", inv.Number).Str("pdf", pdfPath).Msg("invoice_worker: PDF generated")

	if inv.EmailTo == nil || *inv.EmailTo == "" {
		return
	}
	emailJob := EmailJobPayload{
		InvoiceID: inv.ID.String(),
		ToEmail:   *inv.EmailTo,
		Subject:   fmt.Sprintf("%s — Invoice %s", w.companyName, inv.Number),
		Body: fmt.Sprintf("Please find attached invoice %s for order %s.\nBalance due: %s",
			inv.Number, inv.OrderNumber, inv.Balance.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("invoice", inv.Number).Msg("invoice_worker: failed to enqueue email")
		return
	}
	log.Info().Str("invoice", inv.Number).Str("to", *inv.EmailTo).Msg("invoice_worker: email job enqueued")
}

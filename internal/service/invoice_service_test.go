package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ciprianbratila/ortho-orders/internal/config"
	"github.com/ciprianbratila/ortho-orders/internal/dto"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/repository"
	"github.com/ciprianbratila/ortho-orders/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubInvoiceRepo is an in-memory InvoiceRepository for testing.
type stubInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
}

func newStubInvoiceRepo(invoices ...*model.Invoice) *stubInvoiceRepo {
	r := &stubInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
	for _, inv := range invoices {
		r.invoices[inv.ID] = inv
	}
	return r
}

func (r *stubInvoiceRepo) CreateTx(_ *gorm.DB, inv *model.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubInvoiceRepo) NextNumberTx(_ *gorm.DB, year int) (string, error) {
	return repository.FormatDocumentNumber("FACT", year, int64(len(r.invoices)+1)), nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return inv, nil
}

func (r *stubInvoiceRepo) FindActiveByOrderID(_ context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.OrderID == orderID && inv.Status != model.InvoiceStatusCancelled {
			return inv, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubInvoiceRepo) List(_ context.Context, _ dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	out := make([]model.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (r *stubInvoiceRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	inv, ok := r.invoices[id]
	if !ok {
		return errors.New("not found")
	}
	inv.Status = status
	return nil
}

func (r *stubInvoiceRepo) UpdatePDFPath(_ context.Context, id uuid.UUID, path string) error {
	inv, ok := r.invoices[id]
	if !ok {
		return errors.New("not found")
	}
	inv.PDFPath = &path
	return nil
}

func (r *stubInvoiceRepo) UpdateDelivery(_ context.Context, id uuid.UUID, status string, retryCount int, nextRetryAt *time.Time, lastError *string) error {
	inv, ok := r.invoices[id]
	if !ok {
		return errors.New("not found")
	}
	inv.DeliveryStatus = status
	inv.RetryCount = retryCount
	inv.NextRetryAt = nextRetryAt
	inv.LastError = lastError
	return nil
}

func (r *stubInvoiceRepo) ListPendingDelivery(_ context.Context, now time.Time, _ int) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		if inv.DeliveryStatus == model.DeliveryFailed && inv.NextRetryAt != nil && !inv.NextRetryAt.After(now) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{VATPercent: 19.0, InvoiceDueDays: 15, CompanyName: "OrthoLab"}
}

func completedOrder(clientEmail *string) (*stubOrderRepo, *model.Order, *stubCatalog) {
	snap, splint, _ := labCatalog()
	repo := newStubOrderRepo()
	order := &model.Order{
		ID:            uuid.New(),
		Number:        "CMD-2026-0009",
		Status:        model.OrderStatusCompleted,
		PaymentMethod: model.PaymentCash,
		Advance:       dec("20.00"),
		Total:         dec("140.00"),
		Items:         []model.OrderItem{{ProductID: splint.ID, Quantity: 2}},
		Client: &model.Client{
			ID: uuid.New(), FirstName: "Maria", LastName: "Ionescu",
			NationalID: "2850101223344", Phone: "0722000000", Email: clientEmail,
		},
	}
	repo.orders[order.ID] = order
	return repo, order, &stubCatalog{snap: snap}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestInvoiceIssueComputesTotals(t *testing.T) {
	orderRepo, order, cat := completedOrder(nil)
	svc := service.NewInvoiceService(newStubInvoiceRepo(), orderRepo, cat, nil, testConfig())

	resp, err := svc.Issue(context.Background(), dto.IssueInvoiceRequest{OrderID: order.ID.String()})
	require.NoError(t, err)

	assert.Contains(t, resp.Number, "FACT-")
	assert.True(t, dec("140.00").Equal(resp.Subtotal))
	assert.True(t, dec("26.60").Equal(resp.VATAmount), "VAT %s", resp.VATAmount)
	assert.True(t, dec("166.60").Equal(resp.Total))
	// balance = total - advance, no insurance on cash orders
	assert.True(t, dec("146.60").Equal(resp.Balance), "balance %s", resp.Balance)
	assert.Equal(t, model.InvoiceStatusIssued, resp.Status)
	assert.Equal(t, "Maria Ionescu", resp.ClientName)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "Occlusal splint", resp.Lines[0].Description)
}

func TestInvoiceIssueDeductsInsurance(t *testing.T) {
	orderRepo, order, cat := completedOrder(nil)
	order.PaymentMethod = model.PaymentInsurance
	order.InsuranceValue = dec("100.00")

	svc := service.NewInvoiceService(newStubInvoiceRepo(), orderRepo, cat, nil, testConfig())

	resp, err := svc.Issue(context.Background(), dto.IssueInvoiceRequest{OrderID: order.ID.String()})
	require.NoError(t, err)
	// 166.60 - 20 advance - 100 insurance
	assert.True(t, dec("46.60").Equal(resp.Balance), "balance %s", resp.Balance)
}

func TestInvoiceIssueRejectsSecondActiveInvoice(t *testing.T) {
	orderRepo, order, cat := completedOrder(nil)
	invRepo := newStubInvoiceRepo(&model.Invoice{
		ID: uuid.New(), Number: "FACT-2026-0001", OrderID: order.ID,
		Status: model.InvoiceStatusIssued,
	})
	svc := service.NewInvoiceService(invRepo, orderRepo, cat, nil, testConfig())

	_, err := svc.Issue(context.Background(), dto.IssueInvoiceRequest{OrderID: order.ID.String()})
	assert.ErrorIs(t, err, service.ErrInvoiceExists)
}

func TestInvoiceIssueAllowedAfterCancellation(t *testing.T) {
	orderRepo, order, cat := completedOrder(nil)
	invRepo := newStubInvoiceRepo(&model.Invoice{
		ID: uuid.New(), Number: "FACT-2026-0001", OrderID: order.ID,
		Status: model.InvoiceStatusCancelled,
	})
	svc := service.NewInvoiceService(invRepo, orderRepo, cat, nil, testConfig())

	_, err := svc.Issue(context.Background(), dto.IssueInvoiceRequest{OrderID: order.ID.String()})
	assert.NoError(t, err)
}

func TestInvoiceIssueRejectsOpenOrder(t *testing.T) {
	orderRepo, order, cat := completedOrder(nil)
	order.Status = model.OrderStatusInProgress

	svc := service.NewInvoiceService(newStubInvoiceRepo(), orderRepo, cat, nil, testConfig())

	_, err := svc.Issue(context.Background(), dto.IssueInvoiceRequest{OrderID: order.ID.String()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not completed")
}

func TestInvoiceIssueEmailDelivery(t *testing.T) {
	email := "maria@example.com"
	orderRepo, order, cat := completedOrder(&email)

	svc := service.NewInvoiceService(newStubInvoiceRepo(), orderRepo, cat, nil, testConfig())

	// Client email is the default delivery target.
	resp, err := svc.Issue(context.Background(), dto.IssueInvoiceRequest{OrderID: order.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryPending, resp.DeliveryStatus)

	// Without any address there is nothing to deliver.
	orderRepo2, order2, cat2 := completedOrder(nil)
	svc2 := service.NewInvoiceService(newStubInvoiceRepo(), orderRepo2, cat2, nil, testConfig())
	resp2, err := svc2.Issue(context.Background(), dto.IssueInvoiceRequest{OrderID: order2.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryNone, resp2.DeliveryStatus)
}

func TestInvoiceUpdateStatusOnlyFromIssued(t *testing.T) {
	inv := &model.Invoice{ID: uuid.New(), Number: "FACT-2026-0002", Status: model.InvoiceStatusPaid}
	svc := service.NewInvoiceService(newStubInvoiceRepo(inv), newStubOrderRepo(), nil, nil, testConfig())

	_, err := svc.UpdateStatus(context.Background(), inv.ID, model.InvoiceStatusCancelled)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already paid")
}

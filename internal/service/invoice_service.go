package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ciprianbratila/ortho-orders/internal/config"
	"github.com/ciprianbratila/ortho-orders/internal/dto"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/pricing"
	"github.com/ciprianbratila/ortho-orders/internal/repository"
	"github.com/ciprianbratila/ortho-orders/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrInvoiceExists = errors.New("order already has an active invoice")

type InvoiceService interface {
	// Issue creates the invoice for a completed order. At most one
	// non-cancelled invoice may exist per order.
	Issue(ctx context.Context, req dto.IssueInvoiceRequest) (*dto.InvoiceResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*dto.InvoiceResponse, error)
	List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.InvoiceResponse, error)
	// PDFPath returns the stored PDF location for download, or an error
	// when the worker has not generated it yet.
	PDFPath(ctx context.Context, id uuid.UUID) (string, error)
}

type invoiceService struct {
	repo       repository.InvoiceRepository
	orderRepo  repository.OrderRepository
	catalog    CatalogLoader
	dispatcher *worker.Dispatcher
	cfg        *config.Config
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	catalog CatalogLoader,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) InvoiceService {
	return &invoiceService{repo: repo, orderRepo: orderRepo, catalog: catalog, dispatcher: dispatcher, cfg: cfg}
}

func (s *invoiceService) Issue(ctx context.Context, req dto.IssueInvoiceRequest) (*dto.InvoiceResponse, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order_id: %w", err)
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.New("order not found")
	}
	if order.Status != model.OrderStatusCompleted && order.Status != model.OrderStatusDelivered {
		return nil, fmt.Errorf("order %s is not completed", order.Number)
	}
	if order.Client == nil {
		return nil, errors.New("order has no client")
	}

	if _, err := s.repo.FindActiveByOrderID(ctx, orderID); err == nil {
		return nil, ErrInvoiceExists
	}

	// Freeze the billing lines at issue time.
	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	lines := make([]model.InvoiceLine, 0, len(order.Items))
	for _, item := range order.Items {
		description := "product no longer in catalog"
		unitPrice := decimal.Zero
		if p, ok := cat.Product(item.ProductID); ok {
			description = p.Name
			breakdown, err := pricing.ComputePrice(cat, p)
			if err != nil {
				return nil, fmt.Errorf("pricing %s: %w", p.Name, err)
			}
			unitPrice = breakdown.Total
		}
		lines = append(lines, model.InvoiceLine{
			Description: description,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			Total:       unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	subtotal := order.Total
	vatRate := decimal.NewFromFloat(s.cfg.VATPercent)
	vatAmount := subtotal.Mul(vatRate).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Add(vatAmount)

	insurance := decimal.Zero
	if order.PaymentMethod == model.PaymentInsurance {
		insurance = order.InsuranceValue
	}
	balance := total.Sub(order.Advance).Sub(insurance)

	client := order.Client
	now := time.Now()
	inv := model.Invoice{
		OrderID:          order.ID,
		OrderNumber:      order.Number,
		ClientFirstName:  client.FirstName,
		ClientLastName:   client.LastName,
		ClientNationalID: client.NationalID,
		ClientPhone:      client.Phone,
		ClientEmail:      client.Email,
		ClientAddress:    client.Address,
		Subtotal:         subtotal,
		VATRate:          vatRate,
		VATAmount:        vatAmount,
		Total:            total,
		PaymentMethod:    order.PaymentMethod,
		Advance:          order.Advance,
		InsuranceAmount:  insurance,
		Balance:          balance,
		IssueDate:        now,
		DueDate:          now.AddDate(0, 0, s.cfg.InvoiceDueDays),
		Status:           model.InvoiceStatusIssued,
		Notes:            req.Notes,
		DeliveryStatus:   model.DeliveryNone,
		Lines:            lines,
	}
	if req.EmailTo != nil && *req.EmailTo != "" {
		inv.EmailTo = req.EmailTo
		inv.DeliveryStatus = model.DeliveryPending
	} else if client.Email != nil && *client.Email != "" {
		inv.EmailTo = client.Email
		inv.DeliveryStatus = model.DeliveryPending
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			inv.Number = repository.FormatDocumentNumber("FACT", now.Year(), 0)
			return nil
		}
		number, err := s.repo.NextNumberTx(tx, now.Year())
		if err != nil {
			return err
		}
		inv.Number = number
		return s.repo.CreateTx(tx, &inv)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async PDF generation and email delivery (best-effort dispatch).
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueInvoice(ctx, map[string]interface{}{
			"invoice_id": inv.ID.String(),
		})
	}

	return invoiceToResponse(&inv), nil
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("invoice not found")
	}
	return invoiceToResponse(inv), nil
}

func (s *invoiceService) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindActiveByOrderID(ctx, orderID)
	if err != nil {
		return nil, errors.New("order has no active invoice")
	}
	return invoiceToResponse(inv), nil
}

func (s *invoiceService) List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.InvoiceResponse, len(invoices))
	for i := range invoices {
		data[i] = *invoiceToResponse(&invoices[i])
	}
	return &dto.InvoiceListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *invoiceService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("invoice not found")
	}
	if inv.Status != model.InvoiceStatusIssued {
		return nil, fmt.Errorf("invoice %s is already %s", inv.Number, inv.Status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	inv.Status = status
	return invoiceToResponse(inv), nil
}

func (s *invoiceService) PDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", errors.New("invoice not found")
	}
	if inv.PDFPath == nil || *inv.PDFPath == "" {
		return "", errors.New("invoice PDF not generated yet")
	}
	return *inv.PDFPath, nil
}

func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:               inv.ID.String(),
		Number:           inv.Number,
		OrderID:          inv.OrderID.String(),
		OrderNumber:      inv.OrderNumber,
		ClientName:       inv.ClientFirstName + " " + inv.ClientLastName,
		ClientNationalID: inv.ClientNationalID,
		ClientAddress:    inv.ClientAddress,
		Subtotal:         inv.Subtotal,
		VATRate:          inv.VATRate,
		VATAmount:        inv.VATAmount,
		Total:            inv.Total,
		PaymentMethod:    inv.PaymentMethod,
		Advance:          inv.Advance,
		InsuranceAmount:  inv.InsuranceAmount,
		Balance:          inv.Balance,
		IssueDate:        inv.IssueDate.Format(dateFormat),
		DueDate:          inv.DueDate.Format(dateFormat),
		Status:           inv.Status,
		Notes:            inv.Notes,
		DeliveryStatus:   inv.DeliveryStatus,
		EmailTo:          inv.EmailTo,
	}
	for _, line := range inv.Lines {
		resp.Lines = append(resp.Lines, dto.InvoiceLineResponse{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Total:       line.Total,
		})
	}
	return resp
}

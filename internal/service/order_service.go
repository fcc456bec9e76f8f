package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ciprianbratila/ortho-orders/internal/dto"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/pricing"
	"github.com/ciprianbratila/ortho-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Allowed order status transitions. Delivered and cancelled are terminal.
var orderTransitions = map[string][]string{
	model.OrderStatusNew:        {model.OrderStatusInProgress, model.OrderStatusCancelled},
	model.OrderStatusInProgress: {model.OrderStatusCompleted, model.OrderStatusCancelled},
	model.OrderStatusCompleted:  {model.OrderStatusDelivered, model.OrderStatusCancelled},
}

type OrderService interface {
	Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateOrderRequest) (*dto.OrderResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.OrderResponse, error)
	Stats(ctx context.Context) (*dto.OrderStatsResponse, error)
}

type orderService struct {
	repo       repository.OrderRepository
	clientRepo repository.ClientRepository
	catalog    CatalogLoader
}

func NewOrderService(
	repo repository.OrderRepository,
	clientRepo repository.ClientRepository,
	catalog CatalogLoader,
) OrderService {
	return &orderService{repo: repo, clientRepo: clientRepo, catalog: catalog}
}

// priceItems computes unit prices for every item against one catalog
// snapshot and returns the order total. A product missing from the catalog
// prices its line at zero rather than blocking the order; a cyclic product
// graph is a hard error.
func (s *orderService) priceItems(cat pricing.Catalog, items []dto.OrderItemRequest) ([]model.OrderItem, decimal.Decimal, error) {
	resolved := make([]model.OrderItem, 0, len(items))
	total := decimal.Zero

	for _, item := range items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("invalid product_id: %w", err)
		}
		unitPrice := decimal.Zero
		if p, ok := cat.Product(pid); ok {
			breakdown, err := pricing.ComputePrice(cat, p)
			if err != nil {
				return nil, decimal.Zero, fmt.Errorf("pricing %s: %w", p.Name, err)
			}
			unitPrice = breakdown.Total
		}
		total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		resolved = append(resolved, model.OrderItem{
			ProductID: pid,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
		})
	}
	return resolved, total, nil
}

func (s *orderService) Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("invalid client_id: %w", err)
	}
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return nil, errors.New("client not found")
	}
	technicianID, err := parseOptionalUUID(req.TechnicianID)
	if err != nil {
		return nil, fmt.Errorf("invalid technician_id: %w", err)
	}

	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	items, total, err := s.priceItems(cat, req.Items)
	if err != nil {
		return nil, err
	}

	estimated, err := parseOptionalDate(req.EstimatedDelivery)
	if err != nil {
		return nil, fmt.Errorf("invalid estimated_delivery: %w", err)
	}
	insDocDate, err := parseOptionalDate(req.InsuranceDocDate)
	if err != nil {
		return nil, fmt.Errorf("invalid insurance_doc_date: %w", err)
	}

	now := time.Now()
	order := model.Order{
		ClientID:          clientID,
		TechnicianID:      technicianID,
		Status:            model.OrderStatusNew,
		PaymentMethod:     req.PaymentMethod,
		OrderDate:         now,
		EstimatedDelivery: estimated,
		Advance:           req.Advance,
		InsuranceDocDate:  insDocDate,
		InsuranceValue:    req.InsuranceValue,
		Total:             total,
		Notes:             req.Notes,
		Items:             items,
	}
	if req.InsuranceDocNumber != "" {
		order.InsuranceDocNumber = &req.InsuranceDocNumber
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			order.Number = repository.FormatDocumentNumber("CMD", now.Year(), 0)
			return nil
		}
		number, err := s.repo.NextNumberTx(tx, now.Year())
		if err != nil {
			return err
		}
		order.Number = number
		return s.repo.CreateTx(tx, &order)
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.repo.DB() == nil {
		return orderToResponse(&order, cat), nil
	}
	return s.GetByID(ctx, order.ID)
}

// Update rewrites the order and, when the line items changed, recomputes the
// total from the current catalog inside the same transaction that persists
// the new lines.
func (s *orderService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("order not found")
	}
	if order.Status == model.OrderStatusDelivered || order.Status == model.OrderStatusCancelled {
		return nil, fmt.Errorf("order %s can no longer be edited", order.Number)
	}

	if req.TechnicianID != nil {
		technicianID, err := parseOptionalUUID(req.TechnicianID)
		if err != nil {
			return nil, fmt.Errorf("invalid technician_id: %w", err)
		}
		order.TechnicianID = technicianID
	}
	if req.PaymentMethod != nil {
		order.PaymentMethod = *req.PaymentMethod
	}
	if req.EstimatedDelivery != nil {
		estimated, err := parseOptionalDate(req.EstimatedDelivery)
		if err != nil {
			return nil, fmt.Errorf("invalid estimated_delivery: %w", err)
		}
		order.EstimatedDelivery = estimated
	}
	if req.Advance != nil {
		order.Advance = *req.Advance
	}
	if req.InsuranceDocNumber != nil {
		order.InsuranceDocNumber = req.InsuranceDocNumber
	}
	if req.InsuranceDocDate != nil {
		insDocDate, err := parseOptionalDate(req.InsuranceDocDate)
		if err != nil {
			return nil, fmt.Errorf("invalid insurance_doc_date: %w", err)
		}
		order.InsuranceDocDate = insDocDate
	}
	if req.InsuranceValue != nil {
		order.InsuranceValue = *req.InsuranceValue
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	if req.Items != nil {
		cat, err := s.catalog.Load(ctx)
		if err != nil {
			return nil, err
		}
		items, total, err := s.priceItems(cat, req.Items)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		order.Items = items
		order.Total = total
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			return nil
		}
		return s.repo.UpdateTx(tx, order)
	})
	if txErr != nil {
		return nil, txErr
	}
	if s.repo.DB() == nil {
		cat, err := s.catalog.Load(ctx)
		if err != nil {
			return nil, err
		}
		return orderToResponse(order, cat), nil
	}
	return s.GetByID(ctx, order.ID)
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("order not found")
	}

	allowed := false
	for _, next := range orderTransitions[order.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot move order from %s to %s", order.Status, status)
	}

	var deliveredAt *time.Time
	if status == model.OrderStatusDelivered {
		now := time.Now()
		deliveredAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, id, status, deliveredAt); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("order not found")
	}
	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	return orderToResponse(order, cat), nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	// One snapshot prices every order in the page.
	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	data := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, *orderToResponse(&orders[i], cat))
	}
	return &dto.OrderListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *orderService) Stats(ctx context.Context) (*dto.OrderStatsResponse, error) {
	return s.repo.Stats(ctx)
}

// orderToResponse recomputes display unit prices from the given catalog.
// The stored total stays authoritative; line prices are informational.
func orderToResponse(o *model.Order, cat pricing.Catalog) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:             o.ID.String(),
		Number:         o.Number,
		ClientID:       o.ClientID.String(),
		Status:         o.Status,
		PaymentMethod:  o.PaymentMethod,
		OrderDate:      o.OrderDate.Format(timeFormat),
		Advance:        o.Advance,
		InsuranceValue: o.InsuranceValue,
		Total:          o.Total,
		Notes:          o.Notes,
	}
	if o.Client != nil {
		resp.ClientName = o.Client.FirstName + " " + o.Client.LastName
	}
	if o.TechnicianID != nil {
		v := o.TechnicianID.String()
		resp.TechnicianID = &v
	}
	if o.Technician != nil {
		name := o.Technician.FirstName + " " + o.Technician.LastName
		resp.TechnicianName = &name
	}
	if o.EstimatedDelivery != nil {
		v := o.EstimatedDelivery.Format(dateFormat)
		resp.EstimatedDelivery = &v
	}
	if o.DeliveredAt != nil {
		v := o.DeliveredAt.Format(timeFormat)
		resp.DeliveredAt = &v
	}
	if o.InsuranceDocNumber != nil {
		resp.InsuranceDocNumber = *o.InsuranceDocNumber
	}
	if o.InsuranceDocDate != nil {
		v := o.InsuranceDocDate.Format(dateFormat)
		resp.InsuranceDocDate = &v
	}

	for _, item := range o.Items {
		ir := dto.OrderItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Notes:     item.Notes,
		}
		if item.Product != nil {
			ir.ProductName = item.Product.Name
		}
		if p, ok := cat.Product(item.ProductID); ok {
			if breakdown, err := pricing.ComputePrice(cat, p); err == nil {
				ir.UnitPrice = breakdown.Total
				ir.LineTotal = breakdown.Total.Mul(decimal.NewFromInt(int64(item.Quantity)))
			}
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ciprianbratila/ortho-orders/internal/dto"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/repository"

	"github.com/google/uuid"
)

type ClientService interface {
	Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	List(ctx context.Context, filter dto.ClientFilter) (*dto.ClientListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddDocument(ctx context.Context, clientID uuid.UUID, req dto.CreateClientDocumentRequest) (*dto.ClientDocumentResponse, error)
	ListDocuments(ctx context.Context, clientID uuid.UUID) ([]dto.ClientDocumentResponse, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

type clientService struct {
	repo      repository.ClientRepository
	orderRepo repository.OrderRepository
}

func NewClientService(repo repository.ClientRepository, orderRepo repository.OrderRepository) ClientService {
	return &clientService{repo: repo, orderRepo: orderRepo}
}

func (s *clientService) Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	c := &model.Client{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NationalID: req.NationalID,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return clientToResponse(c), nil
}

func (s *clientService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("client not found")
	}
	return clientToResponse(c), nil
}

func (s *clientService) List(ctx context.Context, filter dto.ClientFilter) (*dto.ClientListResponse, error) {
	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClientResponse, len(clients))
	for i := range clients {
		data[i] = *clientToResponse(&clients[i])
	}
	return &dto.ClientListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("client not found")
	}
	if req.FirstName != nil {
		c.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		c.LastName = *req.LastName
	}
	if req.NationalID != nil {
		c.NationalID = *req.NationalID
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clientToResponse(c), nil
}

// Delete refuses to remove a client that has orders. Invoices keep a client
// snapshot, so they are unaffected either way.
func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	orders, _, err := s.orderRepo.List(ctx, dto.OrderFilter{ClientID: id.String(), Page: 1, Limit: 1})
	if err != nil {
		return err
	}
	if len(orders) > 0 {
		return fmt.Errorf("client has orders and cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}

func (s *clientService) AddDocument(ctx context.Context, clientID uuid.UUID, req dto.CreateClientDocumentRequest) (*dto.ClientDocumentResponse, error) {
	if _, err := s.repo.FindByID(ctx, clientID); err != nil {
		return nil, errors.New("client not found")
	}
	d := &model.ClientDocument{
		ClientID: clientID,
		Type:     req.Type,
		Name:     req.Name,
		Notes:    req.Notes,
	}
	if err := s.repo.CreateDocument(ctx, d); err != nil {
		return nil, err
	}
	return documentToResponse(d), nil
}

func (s *clientService) ListDocuments(ctx context.Context, clientID uuid.UUID) ([]dto.ClientDocumentResponse, error) {
	docs, err := s.repo.ListDocuments(ctx, clientID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ClientDocumentResponse, len(docs))
	for i := range docs {
		resp[i] = *documentToResponse(&docs[i])
	}
	return resp, nil
}

func (s *clientService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDocument(ctx, id)
}

func clientToResponse(c *model.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:         c.ID.String(),
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		NationalID: c.NationalID,
		Phone:      c.Phone,
		Email:      c.Email,
		Address:    c.Address,
	}
}

func documentToResponse(d *model.ClientDocument) *dto.ClientDocumentResponse {
	return &dto.ClientDocumentResponse{
		ID:        d.ID.String(),
		Type:      d.Type,
		Name:      d.Name,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt.Format(timeFormat),
	}
}

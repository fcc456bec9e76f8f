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

type EmployeeService interface {
	Create(ctx context.Context, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.EmployeeResponse, error)
	List(ctx context.Context, filter dto.EmployeeFilter) (*dto.EmployeeListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type employeeService struct {
	repo repository.EmployeeRepository
}

func NewEmployeeService(repo repository.EmployeeRepository) EmployeeService {
	return &employeeService{repo: repo}
}

func (s *employeeService) Create(ctx context.Context, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	userID, err := parseOptionalUUID(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id: %w", err)
	}
	e := &model.Employee{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Position:  req.Position,
		Phone:     req.Phone,
		Email:     req.Email,
		UserID:    userID,
		Active:    true,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return employeeToResponse(e), nil
}

func (s *employeeService) GetByID(ctx context.Context, id uuid.UUID) (*dto.EmployeeResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("employee not found")
	}
	return employeeToResponse(e), nil
}

func (s *employeeService) List(ctx context.Context, filter dto.EmployeeFilter) (*dto.EmployeeListResponse, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.EmployeeResponse, len(employees))
	for i := range employees {
		data[i] = *employeeToResponse(&employees[i])
	}
	return &dto.EmployeeListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *employeeService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("employee not found")
	}
	if req.FirstName != nil {
		e.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		e.LastName = *req.LastName
	}
	if req.Position != nil {
		e.Position = *req.Position
	}
	if req.Phone != nil {
		e.Phone = *req.Phone
	}
	if req.Email != nil {
		e.Email = req.Email
	}
	if req.UserID != nil {
		userID, err := parseOptionalUUID(req.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid user_id: %w", err)
		}
		e.UserID = userID
	}
	if req.Active != nil {
		e.Active = *req.Active
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return employeeToResponse(e), nil
}

func (s *employeeService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func employeeToResponse(e *model.Employee) *dto.EmployeeResponse {
	resp := &dto.EmployeeResponse{
		ID:        e.ID.String(),
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Position:  e.Position,
		Phone:     e.Phone,
		Email:     e.Email,
		Active:    e.Active,
	}
	if e.UserID != nil {
		v := e.UserID.String()
		resp.UserID = &v
	}
	return resp
}

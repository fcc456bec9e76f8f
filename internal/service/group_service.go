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

type GroupService interface {
	Create(ctx context.Context, req dto.CreateGroupRequest) (*dto.GroupResponse, error)
	List(ctx context.Context) ([]dto.GroupResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateGroupRequest) (*dto.GroupResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type groupService struct {
	repo repository.GroupRepository
}

func NewGroupService(repo repository.GroupRepository) GroupService {
	return &groupService{repo: repo}
}

func validateModules(modules []string) error {
	known := map[string]bool{}
	for _, m := range model.AllModules() {
		known[m] = true
	}
	for _, m := range modules {
		if !known[m] {
			return fmt.Errorf("unknown module: %s", m)
		}
	}
	return nil
}

func (s *groupService) Create(ctx context.Context, req dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	if err := validateModules(req.Modules); err != nil {
		return nil, err
	}
	g := &model.UserGroup{
		Name:        req.Name,
		Description: req.Description,
		Modules:     req.Modules,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return groupToResponse(g), nil
}

func (s *groupService) List(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.GroupResponse, len(groups))
	for i := range groups {
		resp[i] = *groupToResponse(&groups[i])
	}
	return resp, nil
}

func (s *groupService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateGroupRequest) (*dto.GroupResponse, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("group not found")
	}
	if req.Name != "" {
		g.Name = req.Name
	}
	if req.Description != nil {
		g.Description = *req.Description
	}
	if req.Modules != nil {
		if err := validateModules(req.Modules); err != nil {
			return nil, err
		}
		g.Modules = req.Modules
	}
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return groupToResponse(g), nil
}

// Delete refuses to remove a group that still has users.
func (s *groupService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("group still has %d users", n)
	}
	return s.repo.Delete(ctx, id)
}

func groupToResponse(g *model.UserGroup) *dto.GroupResponse {
	return &dto.GroupResponse{
		ID:          g.ID.String(),
		Name:        g.Name,
		Description: g.Description,
		Modules:     g.Modules,
	}
}

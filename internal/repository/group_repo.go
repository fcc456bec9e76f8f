package repository

import (
	"context"

	"github.com/ciprianbratila/ortho-orders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupRepository interface {
	Create(ctx context.Context, g *model.UserGroup) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.UserGroup, error)
	FindByName(ctx context.Context, name string) (*model.UserGroup, error)
	List(ctx context.Context) ([]model.UserGroup, error)
	Update(ctx context.Context, g *model.UserGroup) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context, id uuid.UUID) (int64, error)
}

type groupRepo struct{ db *gorm.DB }

func NewGroupRepository(db *gorm.DB) GroupRepository { return &groupRepo{db: db} }

func (r *groupRepo) Create(ctx context.Context, g *model.UserGroup) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *groupRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.UserGroup, error) {
	var g model.UserGroup
	err := r.db.WithContext(ctx).First(&g, id).Error
	return &g, err
}

func (r *groupRepo) FindByName(ctx context.Context, name string) (*model.UserGroup, error) {
	var g model.UserGroup
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&g).Error
	return &g, err
}

func (r *groupRepo) List(ctx context.Context) ([]model.UserGroup, error) {
	var groups []model.UserGroup
	err := r.db.WithContext(ctx).Order("name ASC").Find(&groups).Error
	return groups, err
}

func (r *groupRepo) Update(ctx context.Context, g *model.UserGroup) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *groupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.UserGroup{}, id).Error
}

func (r *groupRepo) CountUsers(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("group_id = ?", id).Count(&n).Error
	return n, err
}

package repository

import (
	"context"
	"errors"

	"northwind/internal/domain/model"
	domainrepo "northwind/internal/repository"

	"gorm.io/gorm"
)

type roleGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewRoleGormRepository(db *gorm.DB) domainrepo.RoleRepository {
	return &roleGormRepository{db: db}
}

// nameのロールを返す。なければ作る（冪等）。
func (r *roleGormRepository) EnsureRole(ctx context.Context, name string) (model.Role, error) {
	var role model.Role

	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&role).Error

	if err == nil {
		return role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Role{}, err
	}

	role = model.Role{Name: name}
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		FirstOrCreate(&role).Error; err != nil {
		return model.Role{}, err
	}

	return role, nil
}

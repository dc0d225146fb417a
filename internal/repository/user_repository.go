package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GearShare/service-rental/internal/domain/user"
	"github.com/GearShare/service-rental/internal/platform/apperror"
)

// GormUserRepository is the GORM-based implementation of user.Repository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.findOne(ctx, "User", id.String(), "id = ?", id)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "User", email, "email = ?", email)
}

func (r *GormUserRepository) findOne(ctx context.Context, entity, key, query string, arg any) (*user.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError(entity, key)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return toDomainUser(&model), nil
}

// Save inserts a new user. A taken email is reported as a conflict.
func (r *GormUserRepository) Save(ctx context.Context, u *user.User) error {
	if err := r.db.WithContext(ctx).Create(toUserModel(u)).Error; err != nil {
		err = translateError(err)
		if appErr, ok := apperror.As(err); ok && appErr.Code == apperror.CodeConflict {
			return apperror.NewConflictError("email is already registered")
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

var _ user.Repository = (*GormUserRepository)(nil)

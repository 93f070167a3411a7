package persistence

import (
	"context"
	"strings"

	"github.com/doorsets/backend/internal/domain/identity"
	"github.com/doorsets/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindByLogin finds a user by username or email, case-insensitively
func (r *GormUserRepository) FindByLogin(ctx context.Context, login string) (*identity.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	var m models.UserModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) = ? OR (email <> '' AND LOWER(email) = ?)", login, login).
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// ExistsByUsername checks username uniqueness, case-insensitively
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.UserModel{}, "LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username)))
}

// Count returns the number of users
func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).Count(&n).Error
	return n, err
}

// Save inserts or updates a user
func (r *GormUserRepository) Save(ctx context.Context, u *identity.User) error {
	m := models.UserModelFromDomain(u)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	u.ID, u.CreatedAt, u.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

package models

import (
	"time"

	"github.com/doorsets/backend/internal/domain/identity"
)

// UserModel is the persistence model for User
type UserModel struct {
	AggregateModel
	Username            string `gorm:"type:varchar(100);not null;uniqueIndex:idx_users_username"`
	Email               string `gorm:"type:varchar(200);index"`
	DisplayName         string `gorm:"type:varchar(200)"`
	PasswordHash        string `gorm:"type:varchar(255);not null"`
	Role                string `gorm:"type:varchar(20);not null;default:'staff'"`
	IsActive            bool   `gorm:"not null;default:true"`
	FailedLoginAttempts int    `gorm:"not null;default:0"`
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the row to a User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		Username:            m.Username,
		Email:               m.Email,
		DisplayName:         m.DisplayName,
		PasswordHash:        m.PasswordHash,
		Role:                identity.Role(m.Role),
		IsActive:            m.IsActive,
		FailedLoginAttempts: m.FailedLoginAttempts,
		LockedUntil:         m.LockedUntil,
		LastLoginAt:         m.LastLoginAt,
	}
}

// UserModelFromDomain builds a row from a User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username:            u.Username,
		Email:               u.Email,
		DisplayName:         u.DisplayName,
		PasswordHash:        u.PasswordHash,
		Role:                string(u.Role),
		IsActive:            u.IsActive,
		FailedLoginAttempts: u.FailedLoginAttempts,
		LockedUntil:         u.LockedUntil,
		LastLoginAt:         u.LastLoginAt,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}

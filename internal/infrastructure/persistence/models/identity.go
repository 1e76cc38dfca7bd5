package models

import (
	"time"

	"github.com/velux/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate.
// Email and GoogleID are nullable so that the unique indexes ignore
// accounts that have none.
type UserModel struct {
	BaseModel
	Username       string     `gorm:"type:varchar(150);not null;uniqueIndex:idx_users_username"`
	Email          *string    `gorm:"type:varchar(254);uniqueIndex:idx_users_email"`
	PasswordHash   string     `gorm:"type:varchar(255);not null;default:''"`
	FirstName      string     `gorm:"type:varchar(150);not null;default:''"`
	LastName       string     `gorm:"type:varchar(150);not null;default:''"`
	ProfilePicture string     `gorm:"type:varchar(500);not null;default:''"`
	GoogleID       *string    `gorm:"type:varchar(255);uniqueIndex:idx_users_google_id"`
	IsStaff        bool       `gorm:"not null;default:false"`
	IsActive       bool       `gorm:"not null"`
	LastLoginAt    *time.Time
	FailedAttempts int `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		BaseEntity:     m.BaseModel.ToDomain(),
		Username:       m.Username,
		PasswordHash:   m.PasswordHash,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		ProfilePicture: m.ProfilePicture,
		GoogleID:       m.GoogleID,
		IsStaff:        m.IsStaff,
		IsActive:       m.IsActive,
		LastLoginAt:    m.LastLoginAt,
		FailedAttempts: m.FailedAttempts,
		LockedUntil:    m.LockedUntil,
	}
	if m.Email != nil {
		u.Email = *m.Email
	}
	return u
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username:       u.Username,
		PasswordHash:   u.PasswordHash,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
		GoogleID:       u.GoogleID,
		IsStaff:        u.IsStaff,
		IsActive:       u.IsActive,
		LastLoginAt:    u.LastLoginAt,
		FailedAttempts: u.FailedAttempts,
		LockedUntil:    u.LockedUntil,
	}
	if u.Email != "" {
		email := u.Email
		m.Email = &email
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}

package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsernameMaxLength matches the username column width.
const UsernameMaxLength = 150

// User represents the canonical identity entity.
type User struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email         string         `gorm:"column:email;size:100;not null;uniqueIndex:idx_users_email"`
	Username      string         `gorm:"column:username;size:150;not null;uniqueIndex:idx_users_username"`
	PasswordHash  string         `gorm:"column:password_hash;not null"`
	FirstName     string         `gorm:"column:first_name;size:100;not null"`
	LastName      string         `gorm:"column:last_name;size:100;not null"`
	Avatar        *string        `gorm:"column:avatar"`
	Role          enums.UserRole `gorm:"column:role;size:50;not null;default:customer;index:idx_users_role"`
	EmailVerified bool           `gorm:"column:email_verified;not null;default:false"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key and default role.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = enums.UserRoleCustomer
	}
	return nil
}

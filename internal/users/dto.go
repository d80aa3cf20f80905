package users

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// ProfileDTO is the transport shape that omits credentials.
type ProfileDTO struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	Role          enums.UserRole `json:"role"`
	Avatar        *string        `json:"avatar"`
	EmailVerified bool           `json:"email_verified"`
}

// SummaryDTO is the user snapshot embedded in login responses.
type SummaryDTO struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Role      enums.UserRole `json:"role"`
	Avatar    *string        `json:"avatar"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
}

// UpdateProfileDTO carries a partial profile update; nil fields are left untouched.
type UpdateProfileDTO struct {
	Email     *string         `json:"email" validate:"omitempty,email,max=100"`
	FirstName *string         `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string         `json:"last_name" validate:"omitempty,max=100"`
	Avatar    *string         `json:"avatar" validate:"omitempty,url"`
	Role      *enums.UserRole `json:"role" validate:"omitempty,oneof=customer admin seller"`
}

// Empty reports whether no field was supplied.
func (d UpdateProfileDTO) Empty() bool {
	return d.Email == nil && d.FirstName == nil && d.LastName == nil && d.Avatar == nil && d.Role == nil
}

func FromModel(u *models.User) *ProfileDTO {
	if u == nil {
		return nil
	}
	return &ProfileDTO{
		ID:            u.ID.String(),
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		Avatar:        u.Avatar,
		EmailVerified: u.EmailVerified,
	}
}

func SummaryFromModel(u *models.User) *SummaryDTO {
	if u == nil {
		return nil
	}
	return &SummaryDTO{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Avatar:    u.Avatar,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        c.Email,
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Role:         enums.UserRoleCustomer,
	}
}

package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const emailTakenMessage = "user with this email already exists"

// ProfileService reads and updates the authenticated user's profile.
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateProfileDTO) (*ProfileDTO, error)
}

type profileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	EmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	UpdateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error
}

type profileService struct {
	repo profileRepository
}

// NewProfileService builds the profile service.
func NewProfileService(repo profileRepository) (ProfileService, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &profileService{repo: repo}, nil
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, input UpdateProfileDTO) (*ProfileDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	columns := map[string]any{}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, pkgerrors.Field("email", "This field may not be blank.")
		}
		if email != user.Email {
			taken, err := s.repo.EmailExists(ctx, email, user.ID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
			}
			if taken {
				return nil, pkgerrors.Field("email", emailTakenMessage)
			}
			columns["email"] = email
			user.Email = email
		}
	}
	if input.FirstName != nil {
		columns["first_name"] = strings.TrimSpace(*input.FirstName)
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		columns["last_name"] = strings.TrimSpace(*input.LastName)
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Avatar != nil {
		avatar := strings.TrimSpace(*input.Avatar)
		if avatar == "" {
			columns["avatar"] = nil
			user.Avatar = nil
		} else {
			columns["avatar"] = avatar
			user.Avatar = &avatar
		}
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.Field("role", fmt.Sprintf("%q is not a valid choice.", *input.Role))
		}
		columns["role"] = *input.Role
		user.Role = *input.Role
	}

	if err := s.repo.UpdateColumns(ctx, user.ID, columns); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Field("email", emailTakenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	return FromModel(user), nil
}

func (s *profileService) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

package users

import (
	"context"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func seedUser(t *testing.T, repo *Repository, email, username string) uuid.UUID {
	t.Helper()
	user, err := repo.Create(context.Background(), CreateUserDTO{
		Email:        email,
		Username:     username,
		PasswordHash: "hash",
		FirstName:    "Jane",
		LastName:     "Doe",
	})
	require.NoError(t, err)
	return user.ID
}

func TestGenerateUsernameSuffixesOnCollision(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	name, err := GenerateUsername(ctx, repo, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jane", name)
	seedUser(t, repo, "jane@example.com", name)

	name, err = GenerateUsername(ctx, repo, "jane@other.com")
	require.NoError(t, err)
	assert.Equal(t, "jane1", name)
	seedUser(t, repo, "jane@other.com", name)

	name, err = GenerateUsername(ctx, repo, "jane@third.com")
	require.NoError(t, err)
	assert.Equal(t, "jane2", name)
}

func TestGenerateUsernameKeepsLongLocalPart(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	local := strings.Repeat("j", 60)
	seedUser(t, repo, local+"@example.com", local)

	name, err := GenerateUsername(ctx, repo, local+"@other.com")
	require.NoError(t, err)
	assert.Equal(t, local+"1", name)
}

func TestProfileServiceGetAndUpdate(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	id := seedUser(t, repo, "jane@example.com", "jane")

	svc, err := NewProfileService(repo)
	require.NoError(t, err)

	profile, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleCustomer, profile.Role)
	assert.Nil(t, profile.Avatar)

	seller := enums.UserRoleSeller
	updated, err := svc.Update(ctx, id, UpdateProfileDTO{
		FirstName: strPtr("Janet"),
		Avatar:    strPtr("https://cdn.shop.test/a.png"),
		Role:      &seller,
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, "Doe", updated.LastName)
	assert.Equal(t, enums.UserRoleSeller, updated.Role)
	require.NotNil(t, updated.Avatar)

	reloaded, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Janet", reloaded.FirstName)
	assert.Equal(t, enums.UserRoleSeller, reloaded.Role)
}

func TestProfileServiceRejectsTakenEmail(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	id := seedUser(t, repo, "jane@example.com", "jane")
	seedUser(t, repo, "john@example.com", "john")

	svc, err := NewProfileService(repo)
	require.NoError(t, err)

	_, err = svc.Update(ctx, id, UpdateProfileDTO{Email: strPtr("JOHN@example.com")})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	updated, err := svc.Update(ctx, id, UpdateProfileDTO{Email: strPtr("jane.new@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "jane.new@example.com", updated.Email)
}

func TestProfileServiceUnknownUser(t *testing.T) {
	svc, err := NewProfileService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

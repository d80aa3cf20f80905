package users

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/slug"
)

const defaultUsername = "user"

type usernameChecker interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// GenerateUsername derives a unique username from the email local part,
// appending 1, 2, ... on collision (jane, jane1, jane2).
func GenerateUsername(ctx context.Context, repo usernameChecker, email string) (string, error) {
	base, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if base == "" {
		base = defaultUsername
	}
	return slug.UniqueWith(base, "", models.UsernameMaxLength, func(candidate string) (bool, error) {
		return repo.UsernameExists(ctx, candidate)
	})
}

package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/cache"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service exposes category browsing.
type Service interface {
	List(ctx context.Context) ([]SummaryDTO, error)
	Get(ctx context.Context, slug string) (*DetailDTO, error)
}

type categoryReader interface {
	List(ctx context.Context) ([]models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type service struct {
	repo  categoryReader
	cache *cache.Catalog
}

// NewService constructs the category service. cache may be nil.
func NewService(repo categoryReader, catalogCache *cache.Catalog) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo, cache: catalogCache}, nil
}

func (s *service) List(ctx context.Context) ([]SummaryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]SummaryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, SummaryFromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, slug string) (*DetailDTO, error) {
	dto, err := cache.Fetch(ctx, s.cache, cache.KindCategory, slug, func(ctx context.Context) (*DetailDTO, error) {
		category, err := s.repo.FindBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		detail := DetailFromModel(*category)
		return &detail, nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	if dto == nil {
		return nil, pkgerrors.NotFound("category")
	}
	return dto, nil
}

package product

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/angelmondragon/storefront-backend/pkg/cache"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"gorm.io/gorm"
)

const invalidPageMessage = "Invalid page."

// Service exposes the public product catalog.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Get(ctx context.Context, slug string) (*DetailDTO, error)
}

// ListInput captures the inputs needed to filter and paginate products.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
	// RequestURL is used to build absolute next/previous links.
	RequestURL *url.URL
}

type productReader interface {
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, int64, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
}

type service struct {
	repo  productReader
	cache *cache.Catalog
}

// NewService constructs the product service. cache may be nil.
func NewService(repo productReader, catalogCache *cache.Catalog) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, cache: catalogCache}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	params := input.Pagination.Normalize()
	rows, total, err := s.repo.List(ctx, input.Filters, params)
	if err != nil {
		if errors.Is(err, pagination.ErrPageOutOfRange) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, invalidPageMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	next, previous := params.Links(input.RequestURL, total)
	return &ListResult{
		Count:    total,
		Next:     next,
		Previous: previous,
		Results:  ListItemsFromModels(rows),
	}, nil
}

func (s *service) Get(ctx context.Context, slug string) (*DetailDTO, error) {
	dto, err := cache.Fetch(ctx, s.cache, cache.KindProduct, slug, func(ctx context.Context) (*DetailDTO, error) {
		product, err := s.repo.FindBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		detail := DetailFromModel(*product)
		return &detail, nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if dto == nil {
		return nil, pkgerrors.NotFound("product")
	}
	return dto, nil
}

package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes business rules for wishlist management.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*WishlistDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, productID uint) (*WishlistDTO, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID uint) (*WishlistDTO, error)
}

type wishlistRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error)
	AddItem(ctx context.Context, wishlistID, productID uint) error
	RemoveItem(ctx context.Context, wishlistID, productID uint) (bool, error)
}

type productLoader interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo wishlistRepository
	ProductRepo  productLoader
}

type service struct {
	wishlists wishlistRepository
	products  productLoader
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, fmt.Errorf("wishlist repo is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repo is required")
	}
	return &service{wishlists: params.WishlistRepo, products: params.ProductRepo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*WishlistDTO, error) {
	w, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return fromModel(w), nil
}

// AddItem ensures the product exists and adds it; adding twice is a no-op.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, productID uint) (*WishlistDTO, error) {
	if productID == 0 {
		return nil, pkgerrors.Field("product_id", "product_id is required")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	w, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.wishlists.AddItem(ctx, w.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add wishlist item")
	}
	return s.Get(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, productID uint) (*WishlistDTO, error) {
	w, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	removed, err := s.wishlists.RemoveItem(ctx, w.ID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove wishlist item")
	}
	if !removed {
		return nil, pkgerrors.NotFound("wishlist item")
	}
	return s.Get(ctx, userID)
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	w, err := s.wishlists.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist")
	}
	return w, nil
}

package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service exposes the cart operations keyed by cart code.
type Service interface {
	Add(ctx context.Context, input AddItemInput) (*CartDTO, error)
	Get(ctx context.Context, cartCode string) (*CartDTO, error)
	Remove(ctx context.Context, cartCode string, productID uint) (*CartDTO, error)
	Update(ctx context.Context, input UpdateItemInput) (*CartDTO, error)
	Clear(ctx context.Context, cartCode string) (*CartDTO, error)
}

// AddItemInput is the validated add-to-cart payload. Quantity must be positive.
type AddItemInput struct {
	CartCode  string
	ProductID uint
	Quantity  int
}

// UpdateItemInput sets an absolute quantity; zero or less removes the line.
type UpdateItemInput struct {
	CartCode  string
	ProductID uint
	Quantity  int
}

type service struct {
	repo     CartRepository
	products productLoader
}

// NewService constructs the cart service.
func NewService(repo CartRepository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Add(ctx context.Context, input AddItemInput) (*CartDTO, error) {
	code, err := requireCode(input.CartCode)
	if err != nil {
		return nil, err
	}
	if input.ProductID == 0 {
		return nil, pkgerrors.Field("product_id", "product_id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.Field("quantity", "Quantity must be greater than zero")
	}

	cart, err := s.repo.GetOrCreate(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get or create cart")
	}
	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if err := s.repo.AddItem(ctx, cart.ID, input.ProductID, input.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart item")
	}
	return s.reload(ctx, code)
}

func (s *service) Get(ctx context.Context, cartCode string) (*CartDTO, error) {
	code, err := requireCode(cartCode)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, code)
}

func (s *service) Remove(ctx context.Context, cartCode string, productID uint) (*CartDTO, error) {
	cart, item, err := s.loadItem(ctx, cartCode, productID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
	}
	return s.reload(ctx, cart.CartCode)
}

func (s *service) Update(ctx context.Context, input UpdateItemInput) (*CartDTO, error) {
	cart, item, err := s.loadItem(ctx, input.CartCode, input.ProductID)
	if err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		err = s.repo.DeleteItem(ctx, item.ID)
	} else {
		err = s.repo.SetItemQuantity(ctx, item.ID, input.Quantity)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	return s.reload(ctx, cart.CartCode)
}

func (s *service) Clear(ctx context.Context, cartCode string) (*CartDTO, error) {
	cart, err := s.load(ctx, cartCode)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ClearItems(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return s.reload(ctx, cart.CartCode)
}

func (s *service) reload(ctx context.Context, code string) (*CartDTO, error) {
	cart, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	return FromModel(cart), nil
}

func (s *service) load(ctx context.Context, cartCode string) (*models.Cart, error) {
	code, err := requireCode(cartCode)
	if err != nil {
		return nil, err
	}
	cart, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return cart, nil
}

func (s *service) loadItem(ctx context.Context, cartCode string, productID uint) (*models.Cart, *models.CartItem, error) {
	if productID == 0 {
		return nil, nil, pkgerrors.Field("product_id", "product_id is required")
	}
	cart, err := s.load(ctx, cartCode)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.repo.FindItem(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.NotFound("cart item")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}
	return cart, item, nil
}

func requireCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", pkgerrors.Field("cart_code", "cart_code is required")
	}
	if len(code) > models.CartCodeMaxLength {
		return "", pkgerrors.Field("cart_code", fmt.Sprintf("cart_code must be at most %d characters", models.CartCodeMaxLength))
	}
	return code, nil
}

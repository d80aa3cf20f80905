package cart

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Cart, error)
	GetOrCreate(ctx context.Context, code string) (*models.Cart, error)
	AddItem(ctx context.Context, cartID, productID uint, quantity int) error
	FindItem(ctx context.Context, cartID, productID uint) (*models.CartItem, error)
	SetItemQuantity(ctx context.Context, itemID uint, quantity int) error
	DeleteItem(ctx context.Context, itemID uint) error
	ClearItems(ctx context.Context, cartID uint) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
}

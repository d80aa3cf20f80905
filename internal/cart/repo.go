package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists carts and cart items.
type Repository struct {
	repo.Base
}

// NewRepository builds a cart repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByCode loads the cart with its items (ordered by id) and their products.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("cart_items.id ASC") }).
		Preload("Items.Product").
		First(&cart, "cart_code = ?", code).
		Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate inserts the cart if the code is new and returns the stored row.
// Concurrent callers with the same code converge on one row.
func (r *Repository) GetOrCreate(ctx context.Context, code string) (*models.Cart, error) {
	candidate := models.Cart{CartCode: code}
	err := r.DB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "cart_code"}}, DoNothing: true}).
		Omit("Items", "User").
		Create(&candidate).
		Error
	if err != nil {
		return nil, err
	}
	return r.FindByCode(ctx, code)
}

// AddItem inserts the line or increments its quantity in a single upsert.
func (r *Repository) AddItem(ctx context.Context, cartID, productID uint, quantity int) error {
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		item := models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
		err := tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
				}),
			}).
			Omit("Product").
			Create(&item).
			Error
		if err != nil {
			return err
		}
		return touch(tx, cartID)
	})
}

// FindItem returns the cart line for the product.
func (r *Repository) FindItem(ctx context.Context, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB(ctx).First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SetItemQuantity overwrites the quantity of a line.
func (r *Repository) SetItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	return r.DB(ctx).Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity).Error
}

// DeleteItem removes a single line.
func (r *Repository) DeleteItem(ctx context.Context, itemID uint) error {
	return r.DB(ctx).Delete(&models.CartItem{}, itemID).Error
}

// ClearItems removes every line of the cart.
func (r *Repository) ClearItems(ctx context.Context, cartID uint) error {
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return touch(tx, cartID)
	})
}

func touch(tx *gorm.DB, cartID uint) error {
	return tx.Model(&models.Cart{}).Where("id = ?", cartID).UpdateColumn("updated_at", time.Now().UTC()).Error
}

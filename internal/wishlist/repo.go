package wishlist

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// GetOrCreate returns the user's wishlist with items and products, creating it on first access.
func (r *Repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	if userID == uuid.Nil {
		return nil, gorm.ErrInvalidValue
	}
	candidate := models.Wishlist{UserID: userID}
	err := r.DB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit("Items", "User").
		Create(&candidate).
		Error
	if err != nil {
		return nil, err
	}

	var wishlist models.Wishlist
	err = r.DB(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("wishlist_items.id ASC") }).
		Preload("Items.Product").
		First(&wishlist, "user_id = ?", userID).
		Error
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// AddItem inserts a wishlist entry and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, wishlistID, productID uint) error {
	if wishlistID == 0 || productID == 0 {
		return gorm.ErrInvalidValue
	}
	return r.DB(ctx).
		Exec(`INSERT INTO wishlist_items (wishlist_id, product_id, added_at) VALUES (?, ?, ?) ON CONFLICT (wishlist_id, product_id) DO NOTHING`, wishlistID, productID, time.Now().UTC()).
		Error
}

// RemoveItem deletes the entry and reports whether one existed.
func (r *Repository) RemoveItem(ctx context.Context, wishlistID, productID uint) (bool, error) {
	res := r.DB(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

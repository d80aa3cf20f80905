package models

import (
	"time"

	"github.com/google/uuid"
)

// Wishlist is the single saved-products list owned by a user.
type Wishlist struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_wishlists_user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Items []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
}

// WishlistItem links a wishlist to a product; the pair is unique.
type WishlistItem struct {
	ID         uint      `gorm:"column:id;primaryKey"`
	WishlistID uint      `gorm:"column:wishlist_id;not null;uniqueIndex:idx_wishlist_items_wishlist_product,priority:1"`
	ProductID  uint      `gorm:"column:product_id;not null;uniqueIndex:idx_wishlist_items_wishlist_product,priority:2"`
	Product    Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	AddedAt    time.Time `gorm:"column:added_at;autoCreateTime"`
}

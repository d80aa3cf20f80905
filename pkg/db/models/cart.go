package models

import (
	"time"

	"github.com/google/uuid"
)

// CartCodeMaxLength bounds the client-supplied cart code.
const CartCodeMaxLength = 11

// Cart is an anonymous or user-linked basket identified by CartCode.
type Cart struct {
	ID        uint       `gorm:"column:id;primaryKey"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;index:idx_carts_user_id"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CartCode  string     `gorm:"column:cart_code;size:11;not null;uniqueIndex:idx_carts_cart_code"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// CartItem is one product line; (cart_id, product_id) is unique.
type CartItem struct {
	ID        uint    `gorm:"column:id;primaryKey"`
	CartID    uint    `gorm:"column:cart_id;not null;uniqueIndex:idx_cart_items_cart_product,priority:1"`
	ProductID uint    `gorm:"column:product_id;not null;uniqueIndex:idx_cart_items_cart_product,priority:2"`
	Product   Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Quantity  int     `gorm:"column:quantity;not null;default:1"`
}

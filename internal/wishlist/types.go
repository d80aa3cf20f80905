package wishlist

import (
	"time"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// WishlistItemDTO wraps the product summary included in a wishlist row.
type WishlistItemDTO struct {
	ID      uint                `json:"id"`
	Product product.ListItemDTO `json:"product"`
	AddedAt time.Time           `json:"added_at"`
}

// WishlistDTO is the user's wishlist.
type WishlistDTO struct {
	ID    uint              `json:"id"`
	Items []WishlistItemDTO `json:"items"`
}

// AddItemRequest is the add-to-wishlist payload.
type AddItemRequest struct {
	ProductID uint `json:"product_id" validate:"required,gt=0"`
}

func fromModel(w *models.Wishlist) *WishlistDTO {
	items := make([]WishlistItemDTO, 0, len(w.Items))
	for _, item := range w.Items {
		items = append(items, WishlistItemDTO{
			ID:      item.ID,
			Product: product.ListItemFromModel(item.Product),
			AddedAt: item.AddedAt,
		})
	}
	return &WishlistDTO{ID: w.ID, Items: items}
}

package cart

import (
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// ItemDTO is one cart line with its computed sub total.
type ItemDTO struct {
	ID       uint                `json:"id"`
	Product  product.ListItemDTO `json:"product"`
	Quantity int                 `json:"quantity"`
	SubTotal string              `json:"sub_total"`
}

// CartDTO is the cart representation returned by every cart endpoint.
type CartDTO struct {
	ID            uint      `json:"id"`
	CartCode      string    `json:"cart_code"`
	Items         []ItemDTO `json:"cartitems"`
	CartTotal     string    `json:"cart_total"`
	TotalQuantity int       `json:"total_quantity"`
}

// SubTotal returns quantity × sale price.
func SubTotal(item models.CartItem) decimal.Decimal {
	return item.Product.SalePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// FromModel computes totals from the loaded items.
func FromModel(cart *models.Cart) *CartDTO {
	if cart == nil {
		return nil
	}
	total := decimal.Zero
	quantity := 0
	items := make([]ItemDTO, 0, len(cart.Items))
	for _, item := range cart.Items {
		sub := SubTotal(item)
		total = total.Add(sub)
		quantity += item.Quantity
		items = append(items, ItemDTO{
			ID:       item.ID,
			Product:  product.ListItemFromModel(item.Product),
			Quantity: item.Quantity,
			SubTotal: product.FormatMoney(sub),
		})
	}
	return &CartDTO{
		ID:            cart.ID,
		CartCode:      cart.CartCode,
		Items:         items,
		CartTotal:     product.FormatMoney(total),
		TotalQuantity: quantity,
	}
}

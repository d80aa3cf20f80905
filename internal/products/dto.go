package product

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// ListItemDTO is the compact product shape used by listings, carts and wishlists.
type ListItemDTO struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	SalePrice    string  `json:"sale_price"`
	Price        string  `json:"price"`
	Discount     int     `json:"discount"`
	Rating       float64 `json:"rating"`
	ReviewsCount int     `json:"reviews_count"`
}

// CategorySummaryDTO is the category reference embedded in product detail.
type CategorySummaryDTO struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Image *string `json:"image"`
}

// DetailDTO extends the list shape with stock, featured and category.
type DetailDTO struct {
	ListItemDTO
	Stock    int                 `json:"stock"`
	Featured bool                `json:"featured"`
	Category *CategorySummaryDTO `json:"category"`
}

// ListResult is the paginated product listing.
type ListResult struct {
	Count    int64         `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []ListItemDTO `json:"results"`
}

// FormatMoney renders a price with two decimal places.
func FormatMoney(value decimal.Decimal) string {
	return value.StringFixed(2)
}

// ListItemFromModel maps a product row to the list shape.
func ListItemFromModel(p models.Product) ListItemDTO {
	return ListItemDTO{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		Image:        p.Image,
		SalePrice:    FormatMoney(p.SalePrice),
		Price:        FormatMoney(p.Price),
		Discount:     p.Discount,
		Rating:       p.Rating,
		ReviewsCount: p.ReviewsCount,
	}
}

// ListItemsFromModels maps rows preserving order; the result is never nil.
func ListItemsFromModels(rows []models.Product) []ListItemDTO {
	out := make([]ListItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ListItemFromModel(row))
	}
	return out
}

// DetailFromModel maps a product with its preloaded category.
func DetailFromModel(p models.Product) DetailDTO {
	dto := DetailDTO{
		ListItemDTO: ListItemFromModel(p),
		Stock:       p.Stock,
		Featured:    p.Featured,
	}
	if p.Category != nil {
		dto.Category = &CategorySummaryDTO{
			ID:    p.Category.ID,
			Name:  p.Category.Name,
			Slug:  p.Category.Slug,
			Image: p.Category.Image,
		}
	}
	return dto
}

package categories

import (
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// SummaryDTO is the category list shape.
type SummaryDTO struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
	Slug  string  `json:"slug"`
}

// DetailDTO adds the description and the category's products.
type DetailDTO struct {
	SummaryDTO
	Description string                `json:"description"`
	Products    []product.ListItemDTO `json:"products"`
}

func SummaryFromModel(c models.Category) SummaryDTO {
	return SummaryDTO{ID: c.ID, Name: c.Name, Image: c.Image, Slug: c.Slug}
}

func DetailFromModel(c models.Category) DetailDTO {
	return DetailDTO{
		SummaryDTO:  SummaryFromModel(c),
		Description: c.Description,
		Products:    product.ListItemsFromModels(c.Products),
	}
}

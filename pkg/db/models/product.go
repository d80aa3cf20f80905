package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const priceScale = 2

var hundred = decimal.NewFromInt(100)

// Product is a catalog entry. SalePrice is derived from Price and Discount on every save.
type Product struct {
	ID           uint            `gorm:"column:id;primaryKey"`
	Name         string          `gorm:"column:name;size:100;not null"`
	Description  string          `gorm:"column:description;not null;default:''"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Discount     int             `gorm:"column:discount;not null;default:0"`
	SalePrice    decimal.Decimal `gorm:"column:sale_price;type:numeric(10,2)"`
	Slug         string          `gorm:"column:slug;size:50;not null;uniqueIndex:idx_products_slug"`
	Image        string          `gorm:"column:image;not null;default:''"`
	CategoryID   *uint           `gorm:"column:category_id;index:idx_products_category_id"`
	Category     *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Stock        int             `gorm:"column:stock;not null;default:0"`
	Rating       float64         `gorm:"column:rating;not null;default:0"`
	ReviewsCount int             `gorm:"column:reviews_count;not null;default:0"`
	Featured     bool            `gorm:"column:featured;not null;default:false"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeSave keeps sale_price consistent with price and discount.
func (p *Product) BeforeSave(*gorm.DB) error {
	p.SalePrice = ComputeSalePrice(p.Price, p.Discount)
	return nil
}

// ComputeSalePrice returns price - price*discount/100 for a positive discount, else price.
func ComputeSalePrice(price decimal.Decimal, discount int) decimal.Decimal {
	if discount <= 0 {
		return price.Round(priceScale)
	}
	off := price.Mul(decimal.NewFromInt(int64(discount))).Div(hundred)
	return price.Sub(off).Round(priceScale)
}

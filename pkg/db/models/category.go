package models

import "time"

// Category groups products; Slug is assigned once by the repository.
type Category struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;size:100;not null"`
	Description string    `gorm:"column:description;not null;default:''"`
	Slug        string    `gorm:"column:slug;size:50;not null;uniqueIndex:idx_categories_slug"`
	Image       *string   `gorm:"column:image"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`

	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

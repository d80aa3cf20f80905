package categories

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/slug"
	"gorm.io/gorm"
)

// Repository wraps category persistence.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns every category ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.DB(ctx).Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindBySlug loads a category with its products ordered by id.
func (r *Repository) FindBySlug(ctx context.Context, value string) (*models.Category, error) {
	var category models.Category
	err := r.DB(ctx).
		Preload("Products", func(tx *gorm.DB) *gorm.DB { return tx.Order("products.id ASC") }).
		First(&category, "slug = ?", value).
		Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByName returns the first category with the exact name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.DB(ctx).Where("name = ?", name).Order("id ASC").First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// SlugExists reports whether a category already uses the slug.
func (r *Repository) SlugExists(ctx context.Context, value string) (bool, error) {
	return r.Exists(ctx, &models.Category{}, "slug = ?", value)
}

// Create inserts the category, assigning a unique slug from its name when none is set.
func (r *Repository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.Slug == "" {
		value, err := slug.Unique(category.Name, func(candidate string) (bool, error) {
			return r.SlugExists(ctx, candidate)
		})
		if err != nil {
			return nil, err
		}
		category.Slug = value
	}
	if err := r.DB(ctx).Omit("Products").Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

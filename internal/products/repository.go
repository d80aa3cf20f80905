package product

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ordering values accepted by List.
const (
	OrderPriceAsc      = "price"
	OrderPriceDesc     = "-price"
	OrderCreatedAtAsc  = "created_at"
	OrderCreatedAtDesc = "-created_at"

	DefaultOrdering = OrderCreatedAtDesc
)

var orderClauses = map[string]string{
	OrderPriceAsc:      "products.price ASC, products.id ASC",
	OrderPriceDesc:     "products.price DESC, products.id DESC",
	OrderCreatedAtAsc:  "products.created_at ASC, products.id ASC",
	OrderCreatedAtDesc: "products.created_at DESC, products.id DESC",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	CategorySlug string
	Featured     *bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       string
	Ordering     string
}

// Repository wraps product persistence.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns one page of products plus the total count of matching rows.
// pagination.ErrPageOutOfRange is returned with the total when the page is past the end.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.filtered(ctx, filters).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := params.Validate(total); err != nil {
		return nil, total, err
	}

	var rows []models.Product
	err := r.filtered(ctx, filters).
		Order(orderClause(filters.Ordering)).
		Offset(params.Offset()).
		Limit(params.PageSize).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) filtered(ctx context.Context, filters ListFilters) *gorm.DB {
	q := r.DB(ctx).Model(&models.Product{})
	if s := strings.TrimSpace(filters.CategorySlug); s != "" {
		sub := r.DB(ctx).Model(&models.Category{}).Select("id").Where("slug = ?", s)
		q = q.Where("products.category_id IN (?)", sub)
	}
	if filters.Featured != nil {
		q = q.Where("products.featured = ?", *filters.Featured)
	}
	if filters.MinPrice != nil {
		q = q.Where("products.sale_price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		q = q.Where("products.sale_price <= ?", *filters.MaxPrice)
	}
	if term := strings.TrimSpace(filters.Search); term != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		q = q.Where(`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return q
}

func orderClause(ordering string) string {
	if clause, ok := orderClauses[strings.TrimSpace(ordering)]; ok {
		return clause
	}
	return orderClauses[DefaultOrdering]
}

// FindBySlug loads a product and its category.
func (r *Repository) FindBySlug(ctx context.Context, value string) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Preload("Category").First(&product, "slug = ?", value).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByName returns the first product with the exact name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Where("name = ?", name).Order("id ASC").First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByCategory returns every product in the category ordered by id.
func (r *Repository) ListByCategory(ctx context.Context, categoryID uint) ([]models.Product, error) {
	var rows []models.Product
	if err := r.DB(ctx).Where("category_id = ?", categoryID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll returns every product with its category, ordered by id.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	if err := r.DB(ctx).Preload("Category").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SlugExists reports whether a product already uses the slug.
func (r *Repository) SlugExists(ctx context.Context, value string) (bool, error) {
	return r.Exists(ctx, &models.Product{}, "slug = ?", value)
}

// Create inserts the product, assigning a unique slug from its name when none is set.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.Slug == "" {
		value, err := slug.Unique(product.Name, func(candidate string) (bool, error) {
			return r.SlugExists(ctx, candidate)
		})
		if err != nil {
			return nil, err
		}
		product.Slug = value
	}
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Save persists every column of an existing product. The slug is left as stored.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Omit("Category").Save(product).Error
}

// UpdateImage sets the image column without running save hooks.
func (r *Repository) UpdateImage(ctx context.Context, id uint, image string) error {
	return r.DB(ctx).Model(&models.Product{}).Where("id = ?", id).
		UpdateColumns(map[string]any{"image": image, "updated_at": time.Now().UTC()}).
		Error
}

package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/angelmondragon/storefront-backend/pkg/cache"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/storage"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	JobPopulate = "populate"

	defaultFeedLimit = 30
)

type feedSource interface {
	FetchProducts(ctx context.Context, limit int) ([]FeedProduct, error)
	Download(ctx context.Context, source string) ([]byte, string, error)
	PlaceholderURL(slug string) string
}

type categoryStore interface {
	FindByName(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
}

type productStore interface {
	FindByName(ctx context.Context, name string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Save(ctx context.Context, product *models.Product) error
}

// PopulateParams configures the populate job.
type PopulateParams struct {
	Logger     *logger.Logger
	Feed       feedSource
	Categories categoryStore
	Products   productStore
	Store      storage.Store
	Cache      *cache.Catalog
	Metrics    *metrics.JobMetrics
	Limit      int
}

type populateJob struct {
	logg       *logger.Logger
	feed       feedSource
	categories categoryStore
	products   productStore
	store      storage.Store
	cache      *cache.Catalog
	metrics    *metrics.JobMetrics
	limit      int
}

// NewPopulateJob builds the job that imports the feed into categories and products.
func NewPopulateJob(params PopulateParams) (Job, error) {
	if params.Feed == nil {
		return nil, fmt.Errorf("feed client required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	return &populateJob{
		logg:       logg,
		feed:       params.Feed,
		categories: params.Categories,
		products:   params.Products,
		store:      params.Store,
		cache:      params.Cache,
		metrics:    params.Metrics,
		limit:      limit,
	}, nil
}

func (j *populateJob) Name() string { return JobPopulate }

// Run imports every feed item. Item failures are collected and do not stop the run.
func (j *populateJob) Run(ctx context.Context) error {
	items, err := j.feed.FetchProducts(ctx, j.limit)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "count", len(items)), "feed fetched")

	var (
		errs          error
		ok            int
		productSlugs  []string
		categorySlugs = map[string]struct{}{}
	)
	for _, item := range items {
		product, category, err := j.importItem(ctx, item)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", item.Title, err))
			continue
		}
		ok++
		productSlugs = append(productSlugs, product.Slug)
		categorySlugs[category.Slug] = struct{}{}
	}

	j.metrics.AddItems(JobPopulate, "ok", ok)
	j.metrics.AddItems(JobPopulate, "error", len(multierr.Errors(errs)))
	errs = multierr.Append(errs, j.invalidate(ctx, productSlugs, categorySlugs))
	return errs
}

func (j *populateJob) importItem(ctx context.Context, item FeedProduct) (*models.Product, *models.Category, error) {
	category, err := j.ensureCategory(ctx, Capitalize(item.Category))
	if err != nil {
		return nil, nil, err
	}

	product, err := j.products.FindByName(ctx, item.Title)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		product, err = j.products.Create(ctx, &models.Product{Name: item.Title, CategoryID: &category.ID})
		if err != nil {
			return nil, nil, fmt.Errorf("create product: %w", err)
		}
	case err != nil:
		return nil, nil, fmt.Errorf("find product: %w", err)
	}

	product.Description = item.Description
	product.Price = item.Price
	product.Discount = int(item.DiscountPercentage)
	product.Stock = item.Stock
	product.Rating = item.Rating
	product.CategoryID = &category.ID
	product.Category = nil
	product.Featured = item.ID%5 == 0
	product.Image = j.storeImage(ctx, product.Slug, item.Thumbnail)

	if err := j.products.Save(ctx, product); err != nil {
		return nil, nil, fmt.Errorf("save product: %w", err)
	}
	return product, category, nil
}

func (j *populateJob) ensureCategory(ctx context.Context, name string) (*models.Category, error) {
	category, err := j.categories.FindByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find category: %w", err)
	}
	category, err = j.categories.Create(ctx, &models.Category{
		Name:        name,
		Description: "Premium products in " + name,
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "category", name), "category created")
	return category, nil
}

// storeImage uploads the thumbnail as products/<slug>.webp and falls back to the placeholder URL.
func (j *populateJob) storeImage(ctx context.Context, slug, source string) string {
	location, err := fetchAndStore(ctx, j.feed, j.store, source, "products/"+slug+".webp")
	if err == nil {
		return location
	}
	warnCtx := j.logg.WithFields(ctx, map[string]any{"slug": slug, "source": source, "reason": err.Error()})
	j.logg.Warn(warnCtx, "image download failed; using placeholder")
	return j.feed.PlaceholderURL(slug)
}

func (j *populateJob) invalidate(ctx context.Context, productSlugs []string, categories map[string]struct{}) error {
	categorySlugs := make([]string, 0, len(categories))
	for slug := range categories {
		categorySlugs = append(categorySlugs, slug)
	}
	return multierr.Combine(
		j.cache.Invalidate(ctx, cache.KindProduct, productSlugs...),
		j.cache.Invalidate(ctx, cache.KindCategory, categorySlugs...),
	)
}

type downloader interface {
	Download(ctx context.Context, source string) ([]byte, string, error)
}

func fetchAndStore(ctx context.Context, feed downloader, store storage.Store, source, key string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", fmt.Errorf("no image source")
	}
	body, declared, err := feed.Download(ctx, source)
	if err != nil {
		return "", err
	}
	if !storage.IsImage(body) {
		return "", fmt.Errorf("%s did not return an image", source)
	}
	return store.Put(ctx, key, storage.DetectContentType(body, declared), body)
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	first, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToUpper(first)) + strings.ToLower(value[size:])
}

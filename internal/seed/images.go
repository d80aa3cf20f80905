package seed

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/cache"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/storage"
	"go.uber.org/multierr"
)

const (
	JobImages = "images"

	defaultImageCategory = "home-decoration"
)

// CategoryImageSources maps category slugs to stock photo URLs.
var CategoryImageSources = map[string]string{
	"smartphones":     "https://loremflickr.com/640/480/iphone,smartphone",
	"laptops":         "https://loremflickr.com/640/480/laptop,computer",
	"fragrances":      "https://loremflickr.com/640/480/perfume,fragrance",
	"skincare":        "https://loremflickr.com/640/480/skincare,cosmetics",
	"groceries":       "https://loremflickr.com/640/480/groceries,food",
	"home-decoration": "https://loremflickr.com/640/480/homedecor,furniture",
	"beauty":          "https://loremflickr.com/640/480/makeup,cosmetics",
	"furniture":       "https://loremflickr.com/640/480/furniture,interior",
}

type imageProductStore interface {
	ListAll(ctx context.Context) ([]models.Product, error)
	UpdateImage(ctx context.Context, id uint, image string) error
}

// ImagesParams configures the image refresh job.
type ImagesParams struct {
	Logger   *logger.Logger
	Feed     downloader
	Products imageProductStore
	Store    storage.Store
	Cache    *cache.Catalog
	Metrics  *metrics.JobMetrics
	// Overrides maps exact product names to image URLs and wins over category sources.
	Overrides map[string]string
	// Sources replaces CategoryImageSources when set.
	Sources map[string]string
}

type imagesJob struct {
	logg      *logger.Logger
	feed      downloader
	products  imageProductStore
	store     storage.Store
	cache     *cache.Catalog
	metrics   *metrics.JobMetrics
	overrides map[string]string
	sources   map[string]string
}

// NewImagesJob builds the job that re-downloads an image for every product.
func NewImagesJob(params ImagesParams) (Job, error) {
	if params.Feed == nil {
		return nil, fmt.Errorf("feed client required")
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
	sources := params.Sources
	if len(sources) == 0 {
		sources = CategoryImageSources
	}
	return &imagesJob{
		logg:      logg,
		feed:      params.Feed,
		products:  params.Products,
		store:     params.Store,
		cache:     params.Cache,
		metrics:   params.Metrics,
		overrides: params.Overrides,
		sources:   sources,
	}, nil
}

func (j *imagesJob) Name() string { return JobImages }

func (j *imagesJob) Run(ctx context.Context) error {
	products, err := j.products.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	var (
		errs    error
		ok      int
		touched []string
	)
	for _, product := range products {
		source := j.SourceFor(product)
		itemCtx := j.logg.WithFields(ctx, map[string]any{"product": product.Name, "source": source})
		location, err := fetchAndStore(ctx, j.feed, j.store, source, "products/"+product.Slug+".jpg")
		if err == nil {
			err = j.products.UpdateImage(ctx, product.ID, location)
		}
		if err != nil {
			j.logg.Warn(itemCtx, "image update failed")
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", product.Name, err))
			continue
		}
		ok++
		touched = append(touched, product.Slug)
		j.logg.Debug(itemCtx, "image updated")
	}

	j.metrics.AddItems(JobImages, "ok", ok)
	j.metrics.AddItems(JobImages, "error", len(multierr.Errors(errs)))
	return multierr.Append(errs, j.cache.Invalidate(ctx, cache.KindProduct, touched...))
}

// SourceFor picks the override for the product name, then its category source, then the default.
func (j *imagesJob) SourceFor(product models.Product) string {
	if source, ok := j.overrides[product.Name]; ok && source != "" {
		return source
	}
	slug := defaultImageCategory
	if product.Category != nil && product.Category.Slug != "" {
		slug = product.Category.Slug
	}
	if source, ok := j.sources[slug]; ok {
		return source
	}
	return j.sources[defaultImageCategory]
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/angelmondragon/storefront-backend/internal/categories"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/seed"
	"github.com/angelmondragon/storefront-backend/pkg/cache"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/storage"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-seed"})
	_ = godotenv.Load()

	cmd := flag.String("cmd", seed.JobPopulate, "seed job: "+strings.Join([]string{seed.JobPopulate, seed.JobImages}, "|"))
	limit := flag.Int("limit", 0, "number of feed products to import (populate only)")
	overridesPath := flag.String("overrides", "", "JSON file mapping product names to image URLs (images only)")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "storefront-seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": *cmd})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	// The cache is optional for seeding; stale entries expire on their own TTL.
	var catalogCache *cache.Catalog
	if redisClient, err := redis.New(ctx, cfg.Redis, logg); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "redis unavailable, skipping cache invalidation")
	} else {
		defer redisClient.Close()
		catalogCache = cache.NewCatalog(redisClient, cfg.Cache, logg)
	}

	store, err := storage.New(cfg.Storage)
	requireResource(ctx, logg, "object store", err)

	feed, err := seed.NewFeedClient(cfg.Seed.FeedURL, seed.WithTimeout(cfg.Seed.HTTPTimeout))
	requireResource(ctx, logg, "feed client", err)

	overrides, err := loadOverrides(*overridesPath)
	requireResource(ctx, logg, "image overrides", err)

	if *limit <= 0 {
		*limit = cfg.Seed.Limit
	}

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	conn := dbClient.DB()
	productRepo := product.NewRepository(conn)

	populate, err := seed.NewPopulateJob(seed.PopulateParams{
		Logger:     logg,
		Feed:       feed,
		Categories: categories.NewRepository(conn),
		Products:   productRepo,
		Store:      store,
		Cache:      catalogCache,
		Metrics:    jobMetrics,
		Limit:      *limit,
	})
	requireResource(ctx, logg, "populate job", err)

	images, err := seed.NewImagesJob(seed.ImagesParams{
		Logger:    logg,
		Feed:      feed,
		Products:  productRepo,
		Store:     store,
		Cache:     catalogCache,
		Metrics:   jobMetrics,
		Overrides: overrides,
	})
	requireResource(ctx, logg, "images job", err)

	registry := seed.NewRegistry(populate, images)
	job, err := registry.Lookup(*cmd)
	if err != nil {
		exitf("%v", err)
	}

	if err := seed.NewRunner(logg, jobMetrics).Run(ctx, job); err != nil {
		exitf("seed %s finished with errors: %v", *cmd, err)
	}
}

func loadOverrides(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}
	return out, nil
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

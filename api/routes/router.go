package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/internal/wishlist"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type rateLimitStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Params bundles everything the router needs. Nil services answer 500; nil stores disable
// the checks that depend on them.
type Params struct {
	Config *config.Config
	Logger *logger.Logger

	DB             controllers.Pinger
	Redis          controllers.Pinger
	RateLimitStore rateLimitStore
	Sessions       session.AccessSessionChecker

	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	// MediaDir serves locally stored images under the configured media base URL.
	MediaDir string

	Auth       auth.Service
	Profiles   users.ProfileService
	Products   product.Service
	Categories categories.Service
	Cart       cart.Service
	Wishlist   wishlist.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.CORS),
		chimw.StripSlashes,
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)
	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	requireAuth := middleware.Auth(cfg.JWT, p.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": p.DB,
			"redis":    p.Redis,
		}))
	})

	metricsHandler := p.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	if p.MediaDir != "" && !cfg.Storage.UsesS3() {
		mountMedia(r, cfg.Storage.MediaBaseURL, p.MediaDir)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(signupPolicy, p.RateLimitStore, logg)).Post("/signup", controllers.AuthSignup(p.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, p.RateLimitStore, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", controllers.AuthMe(p.Profiles, logg))
				r.Patch("/profile", controllers.AuthUpdateProfile(p.Profiles, p.Auth, logg))
				r.Post("/logout", controllers.AuthLogout(p.Auth, logg))
			})
		})

		r.Get("/products", controllers.ProductsList(p.Products, cfg.App.PublicBaseURL, logg))
		r.Get("/products/{slug}", controllers.ProductDetail(p.Products, logg))
		r.Get("/categories", controllers.CategoriesList(p.Categories, logg))
		r.Get("/categories/{slug}", controllers.CategoryDetail(p.Categories, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Post("/add", controllers.CartAdd(p.Cart, logg))
			r.Get("/get", controllers.CartGet(p.Cart, logg))
			r.Delete("/remove", controllers.CartRemove(p.Cart, logg))
			r.Patch("/update", controllers.CartUpdate(p.Cart, logg))
			r.Delete("/clear", controllers.CartClear(p.Cart, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.WishlistGet(p.Wishlist, logg))
			r.Post("/items", controllers.WishlistAddItem(p.Wishlist, logg))
			r.Delete("/items/{productID}", controllers.WishlistRemoveItem(p.Wishlist, logg))
		})
	})

	return r
}

func mountMedia(r chi.Router, baseURL, dir string) {
	prefix := "/" + strings.Trim(baseURL, "/")
	if prefix == "/" || strings.Contains(baseURL, "://") {
		return
	}
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.Get(prefix+"/*", fs.ServeHTTP)
}

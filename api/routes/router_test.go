package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/internal/wishlist"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]uuid.UUID
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[string]uuid.UUID{}}
}

func (m *memorySessions) Create(_ context.Context, userID uuid.UUID) (session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.sessions[id] = userID
	return session.Session{ID: id, RefreshToken: id + ".secret"}, nil
}

func (m *memorySessions) Resolve(_ context.Context, token string) (uuid.UUID, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, secret, ok := strings.Cut(token, ".")
	if !ok || secret != "secret" {
		return uuid.Nil, "", session.ErrInvalidRefreshToken
	}
	userID, ok := m.sessions[id]
	if !ok {
		return uuid.Nil, "", session.ErrInvalidRefreshToken
	}
	return userID, id, nil
}

func (m *memorySessions) Revoke(ctx context.Context, token string) error {
	_, id, err := m.Resolve(ctx, token)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memorySessions) HasSession(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok, nil
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type testEnv struct {
	handler  http.Handler
	db       *gorm.DB
	products *product.Repository
	registry *prometheus.Registry
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "storefront",
			ExpirationMinutes:      30,
			RefreshTokenTTLMinutes: 600,
		},
		Password: config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Storage:  config.StorageConfig{MediaBaseURL: "/media"},
	}
}

func newTestEnv(t *testing.T, db, redis stubPinger) *testEnv {
	t.Helper()
	cfg := testConfig()
	conn := dbtest.Open(t)
	sessions := newMemorySessions()

	userRepo := users.NewRepository(conn)
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	require.NoError(t, err)
	profiles, err := users.NewProfileService(userRepo)
	require.NoError(t, err)

	productRepo := product.NewRepository(conn)
	productSvc, err := product.NewService(productRepo, nil)
	require.NoError(t, err)
	categorySvc, err := categories.NewService(categories.NewRepository(conn), nil)
	require.NoError(t, err)
	cartSvc, err := cart.NewService(cart.NewRepository(conn), productRepo)
	require.NoError(t, err)
	wishlistSvc, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlist.NewRepository(conn),
		ProductRepo:  productRepo,
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	handler := NewRouter(Params{
		Config:         cfg,
		Logger:         logger.Nop(),
		DB:             db,
		Redis:          redis,
		Sessions:       sessions,
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Auth:           authSvc,
		Profiles:       profiles,
		Products:       productSvc,
		Categories:     categorySvc,
		Cart:           cartSvc,
		Wishlist:       wishlistSvc,
	})
	return &testEnv{handler: handler, db: conn, products: productRepo, registry: reg}
}

func (e *testEnv) seedProduct(t *testing.T, name, price string, category *models.Category) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Description: name + " description", Price: decimal.RequireFromString(price), Stock: 5}
	if category != nil {
		p.CategoryID = &category.ID
	}
	created, err := e.products.Create(context.Background(), p)
	require.NoError(t, err)
	return created
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Error.Code
}

func signup(t *testing.T, env *testEnv, email string) (access, refresh string) {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/auth/signup/", map[string]string{
		"email":            email,
		"first_name":       "Jane",
		"last_name":        "Doe",
		"password":         "secret123",
		"password_confirm": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	return data["access"].(string), data["refresh"].(string)
}

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t, stubPinger{}, stubPinger{})
	rec := env.do(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Storefront-Env"))

	rec = env.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeData(t, rec)["status"])

	down := newTestEnv(t, stubPinger{}, stubPinger{err: errors.New("redis down")})
	rec = down.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"error"`)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, stubPinger{}, stubPinger{})
	access, refresh := signup(t, env, "Jane@Example.com")

	rec := env.do(t, http.MethodGet, "/api/auth/me/", nil, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decodeData(t, rec)
	assert.Equal(t, "jane@example.com", me["email"])
	assert.Equal(t, "customer", me["role"])

	rec = env.do(t, http.MethodPost, "/api/auth/login/", map[string]string{"email": "jane@example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decodeData(t, rec)
	assert.Equal(t, login["access"], rec.Header().Get("X-Storefront-Token"))

	rec = env.do(t, http.MethodPost, "/api/auth/refresh/", map[string]string{"refresh": refresh}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decodeData(t, rec)["access"])

	rec = env.do(t, http.MethodPatch, "/api/auth/profile/", map[string]string{"first_name": "Janet"}, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Janet", decodeData(t, rec)["first_name"])

	assert.Empty(t, rec.Header().Get("X-Storefront-Token"))

	rec = env.do(t, http.MethodPatch, "/api/auth/profile/", map[string]string{"role": "seller"}, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reissued := rec.Header().Get("X-Storefront-Token")
	require.NotEmpty(t, reissued)
	claims, err := pkgAuth.ParseAccessToken(testConfig().JWT, reissued)
	require.NoError(t, err)
	assert.Equal(t, "seller", string(claims.Role))

	rec = env.do(t, http.MethodGet, "/api/auth/me/", nil, reissued)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "seller", decodeData(t, rec)["role"])

	rec = env.do(t, http.MethodPatch, "/api/auth/profile/", map[string]any{"email_verified": true}, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/logout/", map[string]string{"refresh": "garbage"}, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/logout/", map[string]string{"refresh": refresh}, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Logged out successfully", decodeData(t, rec)["message"])

	rec = env.do(t, http.MethodGet, "/api/auth/me/", nil, access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginFailuresAreUnauthorized(t *testing.T) {
	env := newTestEnv(t, stubPinger{}, stubPinger{})
	signup(t, env, "jane@example.com")

	wrong := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "jane@example.com", "password": "nope"}, "")
	unknown := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "who@example.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())

	notEmail := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "jane", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, notEmail.Code, notEmail.Body.String())
	assert.JSONEq(t, wrong.Body.String(), notEmail.Body.String())
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t, stubPinger{}, stubPinger{})
	rec := env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":            "jane@example.com",
		"first_name":       "Jane",
		"last_name":        "Doe",
		"password":         "secret123",
		"password_confirm": "different",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Passwords do not match")

	rec = env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{"email": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t, stubPinger{}, stubPinger{})
	lighting := &models.Category{Name: "Lighting", Slug: "lighting"}
	require.NoError(t, env.db.Create(lighting).Error)
	lamp := env.seedProduct(t, "Desk Lamp", "40.00", lighting)
	env.seedProduct(t, "Kettle", "30.00", nil)

	rec := env.do(t, http.MethodGet, "/api/products/?ordering=price", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decodeData(t, rec)
	assert.EqualValues(t, 2, list["count"])
	assert.Nil(t, list["next"])
	results := list["results"].([]any)
	assert.Equal(t, "Kettle", results[0].(map[string]any)["name"])

	rec = env.do(t, http.MethodGet, "/api/products?category=lighting&min_price=35", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeData(t, rec)["count"])

	rec = env.do(t, http.MethodGet, "/api/products?min_price=cheap", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/products?page=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/products?page=9", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/products?page_size=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	next, _ := decodeData(t, rec)["next"].(string)
	assert.Equal(t, "http://example.com/api/products?page=2&page_size=1", next)

	rec = env.do(t, http.MethodGet, "/api/products/"+lamp.Slug+"/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeData(t, rec)
	assert.Equal(t, "40.00", detail["price"])
	assert.Equal(t, "lighting", detail["category"].(map[string]any)["slug"])

	rec = env.do(t, http.MethodGet, "/api/products/missing/", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/categories/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"lighting"`)

	rec = env.do(t, http.MethodGet, "/api/categories/lighting/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData(t, rec)["products"], 1)

	rec = env.do(t, http.MethodGet, "/api/categories/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartRoutes(t *testing.T) {
	env := newTestEnv(t, stubPinger{}, stubPinger{})
	a := env.seedProduct(t, "Mug", "9.99", nil)
	b := env.seedProduct(t, "Spoon", "5.00", nil)

	rec := env.do(t, http.MethodPost, "/api/cart/add/", map[string]any{"cart_code": "abc123", "product_id": a.ID}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(t, http.MethodPost, "/api/cart/add/", map[string]any{"cart_code": "abc123", "product_id": a.ID}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/cart/add/", map[string]any{"cart_code": "abc123", "product_id": b.ID, "quantity": 1}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "24.98", data["cart_total"])
	assert.EqualValues(t, 3, data["total_quantity"])

	rec = env.do(t, http.MethodPost, "/api/cart/add/", map[string]any{"cart_code": "abc123", "product_id": a.ID, "quantity": 0}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/cart/add/", map[string]any{"cart_code": "abc123", "product_id": 999}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/cart/get/?cart_code=abc123", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData(t, rec)["cartitems"], 2)

	rec = env.do(t, http.MethodGet, "/api/cart/get/", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/cart/get/?cart_code=nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/cart/update/", map[string]any{"cart_code": "abc123", "product_id": a.ID, "quantity": 5}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 6, decodeData(t, rec)["total_quantity"])

	rec = env.do(t, http.MethodPatch, "/api/cart/update/", map[string]any{"cart_code": "abc123", "product_id": a.ID}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/cart/remove/", map[string]any{"cart_code": "abc123", "product_id": b.ID}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData(t, rec)["cartitems"], 1)

	rec = env.do(t, http.MethodDelete, "/api/cart/remove/", map[string]any{"cart_code": "abc123", "product_id": b.ID}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/cart/clear/", map[string]any{"cart_code": "abc123"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	assert.Equal(t, "0.00", data["cart_total"])
	assert.Empty(t, data["cartitems"])
}

func TestWishlistRoutes(t *testing.T) {
	env := newTestEnv(t, stubPinger{}, stubPinger{})
	lamp := env.seedProduct(t, "Lamp", "12.00", nil)

	rec := env.do(t, http.MethodGet, "/api/wishlist/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	access, _ := signup(t, env, "wish@example.com")

	rec = env.do(t, http.MethodGet, "/api/wishlist/", nil, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decodeData(t, rec)["items"])

	for i := 0; i < 2; i++ {
		rec = env.do(t, http.MethodPost, "/api/wishlist/items/", map[string]any{"product_id": lamp.ID}, access)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	assert.Len(t, decodeData(t, rec)["items"], 1)

	rec = env.do(t, http.MethodPost, "/api/wishlist/items/", map[string]any{"product_id": 999}, access)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/wishlist/items/"+uintString(lamp.ID)+"/", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData(t, rec)["items"])

	rec = env.do(t, http.MethodDelete, "/api/wishlist/items/"+uintString(lamp.ID), nil, access)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/wishlist/items/abc", nil, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, stubPinger{}, stubPinger{})
	env.do(t, http.MethodGet, "/api/categories", nil, "")

	rec := env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_http_requests_total{method="GET",route="/api/categories",status="200"} 1`)
}

func TestUnknownRouteIs404(t *testing.T) {
	env := newTestEnv(t, stubPinger{}, stubPinger{})
	rec := env.do(t, http.MethodGet, "/api/orders", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func uintString(v uint) string {
	return decimal.NewFromInt(int64(v)).String()
}

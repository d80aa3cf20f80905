package cart

import (
	"context"
	"sync"
	"testing"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	repo   *Repository
	svc    Service
	lamp   *models.Product
	kettle *models.Product
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.Open(t)
	products := product.NewRepository(db)
	lamp, err := products.Create(context.Background(), &models.Product{Name: "Lamp", Price: decimal.RequireFromString("9.99")})
	require.NoError(t, err)
	kettle, err := products.Create(context.Background(), &models.Product{Name: "Kettle", Price: decimal.RequireFromString("10.00"), Discount: 50})
	require.NoError(t, err)

	repo := NewRepository(db)
	svc, err := NewService(repo, products)
	require.NoError(t, err)
	return fixture{db: db, repo: repo, svc: svc, lamp: lamp, kettle: kettle}
}

func TestAddCreatesCartAndIncrementsQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Add(ctx, AddItemInput{CartCode: "abc123", ProductID: f.lamp.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "abc123", first.CartCode)
	require.Len(t, first.Items, 1)
	assert.Equal(t, 2, first.Items[0].Quantity)

	second, err := f.svc.Add(ctx, AddItemInput{CartCode: "abc123", ProductID: f.lamp.ID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, 5, second.Items[0].Quantity)
	assert.Equal(t, first.ID, second.ID)

	var carts int64
	require.NoError(t, f.db.Model(&models.Cart{}).Count(&carts).Error)
	assert.Equal(t, int64(1), carts)
}

func TestCartTotalsUseSalePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, AddItemInput{CartCode: "totals", ProductID: f.lamp.ID, Quantity: 2})
	require.NoError(t, err)
	cart, err := f.svc.Add(ctx, AddItemInput{CartCode: "totals", ProductID: f.kettle.ID, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, f.lamp.ID, cart.Items[0].Product.ID)
	assert.Equal(t, "19.98", cart.Items[0].SubTotal)
	assert.Equal(t, "5.00", cart.Items[1].SubTotal)
	assert.Equal(t, "24.98", cart.CartTotal)
	assert.Equal(t, 3, cart.TotalQuantity)
}

func TestAddValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input AddItemInput
		code  pkgerrors.Code
	}{
		{name: "missing code", input: AddItemInput{ProductID: f.lamp.ID, Quantity: 1}, code: pkgerrors.CodeValidation},
		{name: "long code", input: AddItemInput{CartCode: "abcdefghijkl", ProductID: f.lamp.ID, Quantity: 1}, code: pkgerrors.CodeValidation},
		{name: "missing product", input: AddItemInput{CartCode: "abc", Quantity: 1}, code: pkgerrors.CodeValidation},
		{name: "zero quantity", input: AddItemInput{CartCode: "abc", ProductID: f.lamp.ID}, code: pkgerrors.CodeValidation},
		{name: "negative quantity", input: AddItemInput{CartCode: "abc", ProductID: f.lamp.ID, Quantity: -1}, code: pkgerrors.CodeValidation},
		{name: "unknown product", input: AddItemInput{CartCode: "abc", ProductID: 999, Quantity: 1}, code: pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Add(ctx, tc.input)
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestGetNeverCreates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, "ghost")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.Get(ctx, "  ")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	var carts int64
	require.NoError(t, f.db.Model(&models.Cart{}).Count(&carts).Error)
	assert.Zero(t, carts)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, AddItemInput{CartCode: "rm", ProductID: f.lamp.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.svc.Remove(ctx, "rm", f.kettle.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	unchanged, err := f.svc.Get(ctx, "rm")
	require.NoError(t, err)
	assert.Len(t, unchanged.Items, 1)

	cart, err := f.svc.Remove(ctx, "rm", f.lamp.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.CartTotal)

	_, err = f.svc.Remove(ctx, "missing", f.lamp.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateSetsAbsoluteQuantityOrDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, AddItemInput{CartCode: "up", ProductID: f.lamp.ID, Quantity: 4})
	require.NoError(t, err)

	cart, err := f.svc.Update(ctx, UpdateItemInput{CartCode: "up", ProductID: f.lamp.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	cart, err = f.svc.Update(ctx, UpdateItemInput{CartCode: "up", ProductID: f.lamp.ID, Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = f.svc.Update(ctx, UpdateItemInput{CartCode: "up", ProductID: f.lamp.ID, Quantity: 2})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, AddItemInput{CartCode: "clr", ProductID: f.lamp.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, AddItemInput{CartCode: "clr", ProductID: f.kettle.ID, Quantity: 1})
	require.NoError(t, err)

	cart, err := f.svc.Clear(ctx, "clr")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalQuantity)
	assert.Equal(t, "clr", cart.CartCode)

	_, err = f.svc.Clear(ctx, "nope")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestConcurrentAddsConvergeOnOneLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Add(ctx, AddItemInput{CartCode: "race", ProductID: f.lamp.ID, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var items []models.CartItem
	require.NoError(t, f.db.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 8, items[0].Quantity)
}

func TestFromModelComputesTotals(t *testing.T) {
	cart := &models.Cart{
		ID:       1,
		CartCode: "x",
		Items: []models.CartItem{
			{ID: 1, Quantity: 2, Product: models.Product{SalePrice: decimal.RequireFromString("9.99")}},
			{ID: 2, Quantity: 1, Product: models.Product{SalePrice: decimal.RequireFromString("5")}},
		},
	}
	dto := FromModel(cart)
	assert.Equal(t, "24.98", dto.CartTotal)
	assert.Equal(t, 3, dto.TotalQuantity)
	assert.Nil(t, FromModel(nil))
}

package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type cartAddRequest struct {
	CartCode  string `json:"cart_code"`
	ProductID uint   `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type cartItemRequest struct {
	CartCode  string `json:"cart_code"`
	ProductID uint   `json:"product_id"`
}

type cartUpdateRequest struct {
	CartCode  string `json:"cart_code"`
	ProductID uint   `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type cartCodeRequest struct {
	CartCode string `json:"cart_code"`
}

// CartAdd upserts a line; quantity defaults to 1 and accumulates on repeat adds.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}

		var body cartAddRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		qty := 1
		if body.Quantity != nil {
			qty = *body.Quantity
		}

		ctx := withCartCode(r.Context(), logg, body.CartCode)
		result, err := svc.Add(ctx, cart.AddItemInput{
			CartCode:  body.CartCode,
			ProductID: body.ProductID,
			Quantity:  qty,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartGet reads a cart by ?cart_code=. It never creates one.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}

		code := strings.TrimSpace(r.URL.Query().Get("cart_code"))
		ctx := withCartCode(r.Context(), logg, code)
		result, err := svc.Get(ctx, code)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}

		var body cartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.ProductID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Field("product_id", "product_id is required"))
			return
		}

		ctx := withCartCode(r.Context(), logg, body.CartCode)
		result, err := svc.Remove(ctx, body.CartCode, body.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartUpdate sets an absolute quantity; zero or less removes the line.
func CartUpdate(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}

		var body cartUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.ProductID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Field("product_id", "product_id is required"))
			return
		}
		if body.Quantity == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Field("quantity", "quantity is required"))
			return
		}

		ctx := withCartCode(r.Context(), logg, body.CartCode)
		result, err := svc.Update(ctx, cart.UpdateItemInput{
			CartCode:  body.CartCode,
			ProductID: body.ProductID,
			Quantity:  *body.Quantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}

		var body cartCodeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := withCartCode(r.Context(), logg, body.CartCode)
		result, err := svc.Clear(ctx, body.CartCode)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

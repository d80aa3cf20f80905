package controllers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}

// absoluteURL rebuilds the request URL with scheme and host, preferring the configured public base.
func absoluteURL(r *http.Request, publicBase string) *url.URL {
	if base := strings.TrimSpace(publicBase); base != "" {
		if u, err := url.Parse(strings.TrimRight(base, "/")); err == nil && u.Host != "" {
			u.Path = u.Path + r.URL.Path
			u.RawQuery = r.URL.RawQuery
			return u
		}
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}
}

func uintParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, pkgerrors.Field(name, "A valid integer is required.")
	}
	return uint(value), nil
}

func withCartCode(ctx context.Context, logg *logger.Logger, code string) context.Context {
	if logg == nil || code == "" {
		return ctx
	}
	return logg.WithCartCode(ctx, code)
}

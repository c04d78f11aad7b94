package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	product "github.com/storefrontlabs/storefront-backend/internal/products"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

// ProductCatalog lists every product, or those whose name matches ?name=.
func ProductCatalog(svc product.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			rows []product.SummaryDTO
			err  error
		)
		if _, filtered := r.URL.Query()["name"]; filtered {
			rows, err = svc.SearchByName(r.Context(), validators.SanitizeString(r.URL.Query().Get("name"), 200))
		} else {
			rows, err = svc.All(r.Context())
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, rows)
	}
}

func ProductCategories(svc product.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, names)
	}
}

func ProductsByCategory(svc product.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ByCategory(r.Context(), strings.TrimSpace(chi.URLParam(r, "category")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, rows)
	}
}

func ProductDetails(svc product.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := svc.Details(r.Context(), chi.URLParam(r, "barcode"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

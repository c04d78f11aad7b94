package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storefrontlabs/storefront-backend/api/middleware"
	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	product "github.com/storefrontlabs/storefront-backend/internal/products"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

// dateValue accepts a bare calendar date or a full RFC 3339 timestamp.
type dateValue struct{ time.Time }

func (d *dateValue) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			d.Time = parsed.UTC()
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "dates must be YYYY-MM-DD or RFC 3339").
		WithDetails(map[string]any{"value": raw})
}

func (d *dateValue) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func nullableDate(n types.Nullable[dateValue]) types.Nullable[time.Time] {
	if !n.Valid || n.Value == nil {
		return types.Nullable[time.Time]{Valid: n.Valid}
	}
	return types.NullableOf(n.Value.Time)
}

type createProductRequest struct {
	BarCode           string                   `json:"barcode" validate:"max=64"`
	Name              string                   `json:"name" validate:"required,max=200"`
	ManufacturingDate *dateValue               `json:"manufacturingDate"`
	ExpiredDate       *dateValue               `json:"expiredDate"`
	Description       *string                  `json:"description"`
	Variations        []product.VariationInput `json:"variations" validate:"dive"`
	Category          *string                  `json:"category"`
}

type updateProductRequest struct {
	Name              *string                   `json:"name" validate:"omitempty,max=200"`
	ManufacturingDate types.Nullable[dateValue] `json:"manufacturingDate"`
	ExpiredDate       types.Nullable[dateValue] `json:"expiredDate"`
	Description       types.Nullable[string]    `json:"description"`
	Variations        []product.VariationInput  `json:"variations" validate:"dive"`
	Category          types.Nullable[string]    `json:"category"`
}

type variationsRequest struct {
	Variations []product.VariationInput `json:"variations" validate:"dive"`
}

// SellerProductList lists the caller's products with filters, ordering and paging.
func SellerProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, rows)
	}
}

func parseListFilters(r *http.Request) (product.ListFilters, error) {
	q := r.URL.Query()
	filters := product.ListFilters{
		Search:   validators.SanitizeString(q.Get("search"), 200),
		Size:     validators.SanitizeString(q.Get("size"), 64),
		Color:    validators.SanitizeString(q.Get("color"), 64),
		Category: validators.SanitizeString(q.Get("category"), 120),
		OrderBy:  strings.TrimSpace(q.Get("orderBy")),
		Order:    strings.TrimSpace(q.Get("order")),
	}
	var err error
	if filters.MinPrice, err = validators.ParseQueryDecimal(r, "minPrice"); err != nil {
		return filters, err
	}
	if filters.MaxPrice, err = validators.ParseQueryDecimal(r, "maxPrice"); err != nil {
		return filters, err
	}
	if filters.Stock, err = validators.ParseQueryEnum(r, "stock", product.StockIn, product.StockOut); err != nil {
		return filters, err
	}
	if filters.HasImages, err = validators.ParseQueryEnum(r, "hasImages", product.ImagesWith, product.ImagesWithout); err != nil {
		return filters, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return filters, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
	if err != nil {
		return filters, err
	}
	filters.Page = pagination.Params{Limit: limit, Offset: offset}
	return filters, nil
}

func SellerProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "barcode"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func SellerProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), product.CreateInput{
			BarCode:           req.BarCode,
			Name:              req.Name,
			ManufacturingDate: req.ManufacturingDate.ptr(),
			ExpiredDate:       req.ExpiredDate.ptr(),
			Description:       req.Description,
			Variations:        req.Variations,
			Category:          req.Category,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, "Product created successfully", dto)
	}
}

// SellerProductUpdate serves both PUT and PATCH; either way only the fields
// present in the body change.
func SellerProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateProductRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "barcode"), product.UpdateInput{
			Name:              req.Name,
			ManufacturingDate: nullableDate(req.ManufacturingDate),
			ExpiredDate:       nullableDate(req.ExpiredDate),
			Description:       req.Description,
			Variations:        req.Variations,
			Category:          req.Category,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func SellerProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "barcode")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Product deleted successfully")
	}
}

// SellerProductVariations replaces the product's whole variation set.
func SellerProductVariations(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req variationsRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.AddVariations(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "barcode"), req.Variations)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

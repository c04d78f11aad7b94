package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/storefrontlabs/storefront-backend/api/middleware"
	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	"github.com/storefrontlabs/storefront-backend/internal/reviews"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

const defaultReviewRating = 5

type createReviewRequest struct {
	OrderID     string        `json:"orderId"`
	OrderItemID string        `json:"orderItemId"`
	Rating      types.FlexInt `json:"rating"`
	Content     string        `json:"content"`
}

type reactionRequest struct {
	Type string `json:"type"`
}

// ReviewCreate records a review for one purchased item. An omitted rating
// means five stars; a present but unusable one is coerced to zero downstream.
func ReviewCreate(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReviewRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.TrimSpace(req.OrderID) == "" || strings.TrimSpace(req.OrderItemID) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "orderId and orderItemId are required"))
			return
		}
		rating := req.Rating
		if !rating.Set {
			rating = types.NewFlexInt(defaultReviewRating)
		}
		review, err := svc.CreateReview(r.Context(), reviews.CreateReviewInput{
			OrderID:     req.OrderID,
			OrderItemID: req.OrderItemID,
			UserID:      middleware.UserIDFromContext(r.Context()),
			Rating:      rating,
			Content:     req.Content,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, "Review created successfully", review)
	}
}

// ReviewList lists a product's reviews. The product barcode comes from the
// path when mounted on /{id} or /product/{barcode}, and from ?productId= otherwise.
func ReviewList(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		barCode := strings.TrimSpace(chi.URLParam(r, "id"))
		if barCode == "" {
			barCode = strings.TrimSpace(chi.URLParam(r, "barcode"))
		}
		if barCode == "" {
			barCode = strings.TrimSpace(r.URL.Query().Get("productId"))
		}
		if barCode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "productId is required"))
			return
		}
		rating, err := reviewRatingFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListByProduct(r.Context(), reviews.ListFilter{
			BarCode: barCode,
			Rating:  rating,
			Sort:    enums.ParseReviewSort(r.URL.Query().Get("sort")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, rows)
	}
}

// reviewRatingFilter treats an empty or "all" rating as no filter.
func reviewRatingFilter(r *http.Request) (*int, error) {
	if strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("rating")), "all") {
		return nil, nil
	}
	return validators.ParseOptionalInt(r, "rating")
}

func ReviewGet(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		review, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, review)
	}
}

// ReviewPurchased lists the caller's delivered purchases that still await a review.
func ReviewPurchased(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.PurchasedItems(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, rows)
	}
}

func ReviewProducts(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ProductsSimple(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, rows)
	}
}

func ReviewReact(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reactionRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.UpsertReaction(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()), req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func ReviewHelpful(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.MarkHelpful(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

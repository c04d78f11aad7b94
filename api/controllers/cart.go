package controllers

import (
	"net/http"

	"github.com/storefrontlabs/storefront-backend/api/middleware"
	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	"github.com/storefrontlabs/storefront-backend/internal/cart"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

type cartItemRequest struct {
	BarCode       string        `json:"barcode"`
	VariationName string        `json:"variationName"`
	Quantity      types.FlexInt `json:"quantity"`
}

func CartItems(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Items(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, items)
	}
}

// CartAdd adds to the quantity already in the cart rather than replacing it.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartItemRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		err := svc.AddItem(r.Context(), middleware.UserIDFromContext(r.Context()), cart.AddItemInput{
			BarCode:       req.BarCode,
			VariationName: req.VariationName,
			Quantity:      req.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Item added to cart")
	}
}

func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartItemRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveItem(r.Context(), middleware.UserIDFromContext(r.Context()), req.BarCode, req.VariationName); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Item removed from cart")
	}
}

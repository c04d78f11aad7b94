package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/api/middleware"
	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	"github.com/storefrontlabs/storefront-backend/internal/orders"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

const maxReportThreshold = 1_000_000

// createOrderRequest keeps the historical lower-case "variationname" key and
// also accepts the camel-case spelling.
type createOrderRequest struct {
	Address         string           `json:"address"`
	Status          string           `json:"status"`
	Quantity        types.FlexInt    `json:"quantity"`
	Price           *decimal.Decimal `json:"price"`
	BarCode         string           `json:"barcode"`
	VariationName   string           `json:"variationname"`
	VariationNameV2 string           `json:"variationName"`
}

func (r createOrderRequest) toInput(buyerID string) orders.CreateOrderInput {
	variation := r.VariationName
	if strings.TrimSpace(variation) == "" {
		variation = r.VariationNameV2
	}
	return orders.CreateOrderInput{
		BuyerID:       buyerID,
		Address:       r.Address,
		Status:        r.Status,
		Quantity:      r.Quantity,
		Price:         r.Price,
		BarCode:       r.BarCode,
		VariationName: variation,
	}
}

// OrderCreate places a single-item order for the authenticated buyer.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.CreateOrder(r.Context(), req.toInput(middleware.UserIDFromContext(r.Context())))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, "Order created successfully", order)
	}
}

func OrderDetails(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minItems, err := validators.ParseQueryInt(r, "minItems", 0, 0, maxReportThreshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.OrderDetails(r.Context(), orders.DetailsFilter{
			Status:   validators.SanitizeString(r.URL.Query().Get("status"), 32),
			MinItems: minItems,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, rows)
	}
}

// OrderTopSelling scopes the report to the caller when a seller asks without
// naming a seller.
func OrderTopSelling(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minQuantity, err := validators.ParseQueryInt(r, "minQuantity", 0, 0, maxReportThreshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellerID := strings.TrimSpace(r.URL.Query().Get("sellerId"))
		if sellerID == "" && middleware.RoleFromContext(r.Context()) == enums.RoleSeller {
			sellerID = middleware.UserIDFromContext(r.Context())
		}
		rows, err := svc.TopSellingProducts(r.Context(), orders.TopSellingFilter{
			MinQuantity: minQuantity,
			SellerID:    sellerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, rows)
	}
}

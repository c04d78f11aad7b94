package controllers

import (
	"net/http"

	"github.com/storefrontlabs/storefront-backend/api/middleware"
	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	"github.com/storefrontlabs/storefront-backend/internal/shippers"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

// updateShipperRequest accepts "license" as the short name for the plate.
type updateShipperRequest struct {
	Company      *string `json:"company" validate:"omitempty,max=120"`
	License      *string `json:"license" validate:"omitempty,max=32"`
	LicensePlate *string `json:"licensePlate" validate:"omitempty,max=32"`
}

func ShipperProfile(svc shippers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := svc.Profile(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func ShipperUpdate(svc shippers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateShipperRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plate := req.LicensePlate
		if plate == nil {
			plate = req.License
		}
		profile, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), shippers.UpdateInput{
			Company:      req.Company,
			LicensePlate: plate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

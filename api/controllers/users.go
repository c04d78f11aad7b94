package controllers

import (
	"net/http"

	"github.com/storefrontlabs/storefront-backend/api/middleware"
	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	"github.com/storefrontlabs/storefront-backend/internal/auth"
	pkgAuth "github.com/storefrontlabs/storefront-backend/pkg/auth"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

// UserRegister creates an account and signs it in.
func UserRegister(svc auth.Service, cookie config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegisterRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess, err := svc.Register(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		middleware.SetSessionCookie(w, cookie, sess.Token, sess.ExpiresAt)
		responses.WriteCreated(w, "User registered successfully", sess)
	}
}

func UserLogin(svc auth.Service, cookie config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess, err := svc.Login(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		middleware.SetSessionCookie(w, cookie, sess.Token, sess.ExpiresAt)
		responses.WriteSuccess(w, sess)
	}
}

// UserLogout revokes the presented session if it is still valid and always
// clears the cookie, so logging out twice is harmless.
func UserLogout(svc auth.Service, jwtCfg config.JWTConfig, cookie config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := middleware.TokenFromRequest(r, cookie.Name); token != "" {
			if claims, err := pkgAuth.ParseAccessToken(jwtCfg, token); err == nil {
				if err := svc.Logout(r.Context(), claims.ID); err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}
		}
		middleware.ClearSessionCookie(w, cookie)
		responses.WriteMessage(w, "Logged out successfully")
	}
}

func UserMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		me, err := svc.Me(r.Context(), userID, middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, me)
	}
}

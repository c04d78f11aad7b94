package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/storefrontlabs/storefront-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID string
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims is the typed JWT carried in the session cookie.
type AccessTokenClaims struct {
	UserID string     `json:"user_id"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

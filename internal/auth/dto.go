package auth

import (
	"strings"
	"time"

	"github.com/storefrontlabs/storefront-backend/internal/users"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
)

// RegisterRequest is the self-registration payload. Role defaults to buyer.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Username     string `json:"username" validate:"required,min=3,max=50"`
	Password     string `json:"password" validate:"required,min=8,max=128"`
	FullName     string `json:"fullName" validate:"max=120"`
	Role         string `json:"role"`
	PhoneNumber  string `json:"phoneNumber" validate:"max=32"`
	LicensePlate string `json:"licensePlate"`
	License      string `json:"license"`
	Company      string `json:"company"`
}

func (r RegisterRequest) licensePlate() string {
	if plate := strings.TrimSpace(r.LicensePlate); plate != "" {
		return plate
	}
	return strings.TrimSpace(r.License)
}

// LoginRequest accepts an identifier that is an email when it contains "@" and
// a username otherwise. Email is the older field name and still honoured.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password" validate:"required"`
}

func (r LoginRequest) identifier() string {
	if id := strings.TrimSpace(r.Identifier); id != "" {
		return id
	}
	return strings.TrimSpace(r.Email)
}

// Session is the outcome of a successful register or login. Token goes into the
// HTTP-only cookie and is never echoed in the body.
type Session struct {
	Token     string        `json:"-"`
	AccessID  string        `json:"-"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      users.UserDTO `json:"user"`
	Role      enums.Role    `json:"role"`
}

// MeResponse describes the current user.
type MeResponse struct {
	User         users.UserDTO `json:"user"`
	PhoneNumbers []string      `json:"phoneNumbers"`
	Role         enums.Role    `json:"userRole"`
}

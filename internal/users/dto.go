package users

import (
	"time"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
)

// UserDTO is the public view of a user; the password hash never leaves the service.
type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Rank      string    `json:"rank"`
	IsBanned  bool      `json:"isBanned"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromModel converts a persisted user into its public view.
func FromModel(m *models.User) UserDTO {
	if m == nil {
		return UserDTO{}
	}
	return UserDTO{
		ID:        m.ID,
		Email:     m.Email,
		Username:  m.Username,
		FullName:  m.FullName,
		Rank:      m.Rank,
		IsBanned:  m.IsBanned,
		CreatedAt: m.CreatedAt,
	}
}

// Extension carries the role-specific rows written alongside a new user.
type Extension struct {
	Role         enums.Role
	PhoneNumber  string
	LicensePlate string
	Company      string
}

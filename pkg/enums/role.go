package enums

import (
	"fmt"
	"strings"
)

// Role is the account type derived from which role table holds the user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSeller  Role = "seller"
	RoleBuyer   Role = "buyer"
	RoleShipper Role = "shipper"
	RoleUnknown Role = "unknown"
)

// validRoles is in resolution priority order.
var validRoles = []Role{
	RoleAdmin,
	RoleSeller,
	RoleBuyer,
	RoleShipper,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a resolvable role. RoleUnknown is not.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanSelfRegister is false for admins; they are provisioned out of band.
func (r Role) CanSelfRegister() bool {
	return r == RoleBuyer || r == RoleSeller || r == RoleShipper
}

// ParseRole converts raw input into a Role, case-insensitively.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

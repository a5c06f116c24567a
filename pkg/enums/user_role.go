package enums

import "fmt"

// UserRole distinguishes marketplace customers from shopkeepers.
type UserRole string

const (
	UserRoleCustomer   UserRole = "customer"
	UserRoleShopkeeper UserRole = "shopkeeper"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleShopkeeper,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts the raw string to UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

package enums

import "fmt"

// CartOwnerKind records whether a cart belongs to an account or a guest id.
type CartOwnerKind string

const (
	CartOwnerUser  CartOwnerKind = "user"
	CartOwnerGuest CartOwnerKind = "guest"
)

var validCartOwnerKinds = []CartOwnerKind{
	CartOwnerUser,
	CartOwnerGuest,
}

// IsValid reports whether the value is a known CartOwnerKind.
func (c CartOwnerKind) IsValid() bool {
	for _, candidate := range validCartOwnerKinds {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartOwnerKind converts the raw string to CartOwnerKind.
func ParseCartOwnerKind(value string) (CartOwnerKind, error) {
	for _, candidate := range validCartOwnerKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart owner kind %q", value)
}

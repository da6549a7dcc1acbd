package enums

import "fmt"

// Role is the two-level access role carried by every user and token claim.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var validRoles = []Role{
	RoleUser,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role. The legacy numeric encoding
// ("0" ordinary, "1" administrator) is accepted for compatibility.
func ParseRole(value string) (Role, error) {
	switch value {
	case "0":
		return RoleUser, nil
	case "1":
		return RoleAdmin, nil
	}
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

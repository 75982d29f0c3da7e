package auth

import (
	"slices"
	"strings"
)

// roleOrder lists the roles from least to most privileged
var roleOrder = []UserRole{RoleUser, RoleAdmin}

func (r UserRole) rank() int {
	return slices.Index(roleOrder, r)
}

// IsValid reports whether r is a known role
func (r UserRole) IsValid() bool {
	return r.rank() >= 0
}

// IsAtLeast reports whether r ranks at or above minRole. Unknown roles never
// satisfy the check.
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	have, want := r.rank(), minRole.rank()
	return have >= 0 && want >= 0 && have >= want
}

func (r UserRole) String() string {
	return string(r)
}

// GetAllRoles returns the known roles, least privileged first
func GetAllRoles() []UserRole {
	return slices.Clone(roleOrder)
}

// ParseRole parses a role name, case insensitive
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(roleStr)))
	return role, role.IsValid()
}

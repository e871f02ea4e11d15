package admin

import (
	"regexp"
	"strings"
)

// Admin is a back-office account.
type Admin struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
)

var roleRegexp = regexp.MustCompile(`^[A-Z0-9_]{3,64}$`)

func (r Role) IsValid() bool {
	return roleRegexp.MatchString(string(r))
}

// ParseRole converts a stored or signed role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

package entity

// Role represents an authorization role
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole returns the role for s, falling back to RoleUser when s is empty.
func ParseRole(s string) (Role, bool) {
	if s == "" {
		return RoleUser, true
	}
	r := Role(s)
	return r, r.Valid()
}

package entity

// Identity is the authenticated caller attached to a request after token verification.
type Identity struct {
	ID   string
	Role Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Owns reports whether the identity may act on the user record with the given id.
func (i Identity) Owns(userID string) bool {
	return i.IsAdmin() || (i.ID != "" && i.ID == userID)
}

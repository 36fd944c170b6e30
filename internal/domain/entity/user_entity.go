package entity

import (
	"time"
)

// User is the aggregate root for user domain
// Passwords are stored as bcrypt hashes in Password field and never leave the service.
type User struct {
	ID             string
	Name           string
	Email          string
	Password       string
	Role           Role
	PhoneNumber    string
	Address        string
	ProfilePicture string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// View is the safe, serializable projection of a User.
type View struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	Address        string    `json:"address,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (u *User) View() View {
	return View{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		PhoneNumber:    u.PhoneNumber,
		Address:        u.Address,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// Views maps a slice of users to their safe projections.
func Views(users []User) []View {
	out := make([]View, 0, len(users))
	for i := range users {
		out = append(out, users[i].View())
	}
	return out
}

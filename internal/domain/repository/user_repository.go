package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Sortable fields accepted by List. Anything else falls back to SortCreatedAt.
const (
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
	SortName      = "name"
	SortEmail     = "email"
	SortRole      = "role"
)

// ListFilter narrows and orders a user listing.
type ListFilter struct {
	Role   entity.Role
	Search string // case-insensitive substring on name
	SortBy string
	Desc   bool
	Offset int
	Limit  int
}

// OutOfRange reports whether the filter cannot address any row. Stores
// answer such a filter with an empty page and the real total.
func (f ListFilter) OutOfRange() bool {
	return f.Offset < 0 || f.Limit < 0
}

// UserRepository defines the interface for user-related store operations.
// Implementations return ErrNotFound for unknown or malformed ids and
// ErrDuplicateEmail when the store's email uniqueness constraint rejects a write.
type UserRepository interface {
	// ValidID reports whether id is a well-formed identifier for this store.
	ValidID(id string) bool
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ListFilter) ([]entity.User, int64, error)
	Ping(ctx context.Context) error
}

// IsSortable reports whether field is an accepted sort key.
func IsSortable(field string) bool {
	switch field {
	case SortCreatedAt, SortUpdatedAt, SortName, SortEmail, SortRole:
		return true
	}
	return false
}

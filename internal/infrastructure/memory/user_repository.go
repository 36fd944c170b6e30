package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/internal/domain/repository"
)

// UserRepository keeps users in process memory. Email uniqueness is enforced
// under the same lock as the write, mirroring a unique index.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entity.User
	now   func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]entity.User), now: time.Now}
}

func (r *UserRepository) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *UserRepository) Ping(ctx context.Context) error { return ctx.Err() }

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(u.Email, "") {
		return repository.ErrDuplicateEmail
	}
	now := r.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.emailTakenLocked(u.Email, u.ID) {
		return repository.ErrDuplicateEmail
	}
	u.CreatedAt = cur.CreatedAt
	u.UpdatedAt = r.now().UTC()
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) List(ctx context.Context, f repository.ListFilter) ([]entity.User, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	matched := make([]entity.User, 0, len(r.users))
	search := strings.ToLower(f.Search)
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) {
			continue
		}
		matched = append(matched, u)
	}
	r.mu.RUnlock()

	less := lessFunc(f.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if f.Desc {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ID < b.ID
	})

	total := int64(len(matched))
	if f.OutOfRange() || f.Offset >= len(matched) {
		return []entity.User{}, total, nil
	}
	end := len(matched)
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return matched[f.Offset:end], total, nil
}

func (r *UserRepository) emailTakenLocked(email, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func lessFunc(field string) func(a, b entity.User) bool {
	switch field {
	case repository.SortName:
		return func(a, b entity.User) bool { return a.Name < b.Name }
	case repository.SortEmail:
		return func(a, b entity.User) bool { return a.Email < b.Email }
	case repository.SortRole:
		return func(a, b entity.User) bool { return a.Role < b.Role }
	case repository.SortUpdatedAt:
		return func(a, b entity.User) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	default:
		return func(a, b entity.User) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)

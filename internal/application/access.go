package application

import (
	"context"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/pkg/apperror"
)

// loadOwned resolves id and checks that actor may act on it. A malformed id and
// a missing record both yield the same NotFound; the ownership check runs last.
func (s *Service) loadOwned(ctx context.Context, actor entity.Identity, id, denied string) (*entity.User, error) {
	if !s.Repo.ValidID(id) {
		return nil, apperror.NotFound(msgUserNotFound)
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeErr(err)
	}
	if !actor.Owns(u.ID) {
		return nil, apperror.Forbidden(denied)
	}
	return u, nil
}

// grantRole parses raw and rejects admin elevation by a non-admin actor.
// An empty raw yields RoleUser.
func grantRole(actor entity.Identity, raw string) (entity.Role, error) {
	role, ok := entity.ParseRole(raw)
	if !ok {
		return "", apperror.Validation("Invalid role", map[string]string{"role": "must be one of: user, admin"})
	}
	if role == entity.RoleAdmin && !actor.IsAdmin() {
		return "", apperror.Forbidden("Only admins can assign the admin role")
	}
	return role, nil
}

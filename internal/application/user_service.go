package application

import (
	"context"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/internal/domain/repository"
	"github.com/oksasatya/user-management-api/pkg/apperror"
	"github.com/oksasatya/user-management-api/pkg/helpers"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit inside an int.
	MaxPage = math.MaxInt / MaxLimit
)

// ListQuery is a normalized user listing request.
type ListQuery struct {
	Page   int
	Limit  int
	SortBy string
	Desc   bool
	Role   entity.Role
	Search string
}

// ParseListQuery applies listing defaults to raw query values.
func ParseListQuery(page, limit, sortBy, order, role, search string) ListQuery {
	q := ListQuery{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		SortBy: repository.SortCreatedAt,
		Desc:   order != "asc",
		Role:   entity.Role(strings.TrimSpace(role)),
		Search: strings.TrimSpace(search),
	}
	if p, err := strconv.Atoi(page); err == nil && p > 0 {
		q.Page = min(p, MaxPage)
	} else if errors.Is(err, strconv.ErrRange) && strings.TrimSpace(page)[0] != '-' {
		q.Page = MaxPage
	}
	if l, err := strconv.Atoi(limit); err == nil {
		q.Limit = min(max(l, 1), MaxLimit)
	}
	if repository.IsSortable(sortBy) {
		q.SortBy = sortBy
	}
	return q
}

type ListResult struct {
	Users      []entity.User
	Page       int
	Limit      int
	TotalPages int
	TotalUsers int64
}

func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	f := repository.ListFilter{
		Role:   q.Role,
		Search: q.Search,
		SortBy: q.SortBy,
		Desc:   q.Desc,
		Offset: (q.Page - 1) * q.Limit,
		Limit:  q.Limit,
	}

	users, total, err := s.search(ctx, f)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return &ListResult{
		Users:      users,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: int((total + int64(q.Limit) - 1) / int64(q.Limit)),
		TotalUsers: total,
	}, nil
}

// search prefers the index for name searches and falls back to the store.
func (s *Service) search(ctx context.Context, f repository.ListFilter) ([]entity.User, int64, error) {
	if s.Index != nil && f.Search != "" {
		users, total, err := s.Index.Search(ctx, f)
		if err == nil {
			return users, total, nil
		}
		helpers.LogWarn(s.Logger, "search index query failed, using store", logrus.Fields{"error": err.Error()})
	}
	return s.Repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, actor entity.Identity, id string) (*entity.User, error) {
	return s.loadOwned(ctx, actor, id, "Unauthorized access")
}

type CreateUserInput struct {
	Name        string
	Email       string
	Password    string
	Role        string
	PhoneNumber string
	Address     string
}

// Create adds a user on behalf of actor. Only an admin may create another admin.
func (s *Service) Create(ctx context.Context, actor entity.Identity, in CreateUserInput) (*entity.User, error) {
	role, err := grantRole(actor, strings.TrimSpace(in.Role))
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Name:        strings.TrimSpace(in.Name),
		Email:       normalizeEmail(in.Email),
		Role:        role,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Address:     strings.TrimSpace(in.Address),
	}
	password := strings.TrimSpace(in.Password)
	if u.Name == "" || u.Email == "" || password == "" {
		return nil, apperror.Validation("Missing required fields", nil)
	}

	if _, err := s.Repo.GetByEmail(ctx, u.Email); err == nil {
		return nil, apperror.Conflict(msgEmailInUse)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, s.storeErr(err)
	}

	if u.Password, err = hashPassword(password); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, s.storeErr(err)
	}

	helpers.LogInfo(s.Logger, "user created", logrus.Fields{"user_id": u.ID, "role": u.Role, "actor_id": actor.ID})
	s.syncIndex(ctx, u)
	s.audit(ctx, AuditEvent{Type: EventCreated, ActorID: actor.ID, UserID: u.ID, Email: u.Email})
	return u, nil
}

// UpdateUserInput carries a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Name        *string
	Email       *string
	Password    *string
	PhoneNumber *string
	Address     *string
	Role        *string
}

func (s *Service) Update(ctx context.Context, actor entity.Identity, id string, in UpdateUserInput) (*entity.User, error) {
	u, err := s.loadOwned(ctx, actor, id, "Unauthorized access")
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			u.Name = name
		}
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != "" && email != u.Email {
			if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
				return nil, apperror.Conflict(msgEmailInUse)
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, s.storeErr(err)
			}
			u.Email = email
		}
	}
	if in.Password != nil {
		if pw := strings.TrimSpace(*in.Password); pw != "" {
			hash, err := hashPassword(pw)
			if err != nil {
				return nil, err
			}
			u.Password = hash
		}
	}
	if in.PhoneNumber != nil {
		u.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.Address != nil {
		u.Address = strings.TrimSpace(*in.Address)
	}
	if in.Role != nil && strings.TrimSpace(*in.Role) != "" {
		if u.Role, err = grantRole(actor, strings.TrimSpace(*in.Role)); err != nil {
			return nil, err
		}
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, s.storeErr(err)
	}

	s.syncIndex(ctx, u)
	s.audit(ctx, AuditEvent{Type: EventUpdated, ActorID: actor.ID, UserID: u.ID, Email: u.Email})
	return u, nil
}

func (s *Service) Delete(ctx context.Context, actor entity.Identity, id string) error {
	u, err := s.loadOwned(ctx, actor, id, "Unauthorized to delete this user")
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, u.ID); err != nil {
		return s.storeErr(err)
	}

	helpers.LogInfo(s.Logger, "user deleted", logrus.Fields{"user_id": u.ID, "actor_id": actor.ID})
	s.dropIndex(ctx, u.ID)
	s.audit(ctx, AuditEvent{Type: EventDeleted, ActorID: actor.ID, UserID: u.ID, Email: u.Email})
	return nil
}

// UpdateProfilePicture stores file as the user's picture. A nil file, an oversized
// one or one that is not a supported image is a validation error, reported after
// the access checks.
func (s *Service) UpdateProfilePicture(ctx context.Context, actor entity.Identity, id string, file io.ReadSeeker, size int64) (*entity.User, error) {
	u, err := s.loadOwned(ctx, actor, id, "Unauthorized to update this profile picture")
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperror.Validation(msgInvalidPicture, nil)
	}
	if s.MaxPictureBytes > 0 && size > s.MaxPictureBytes {
		return nil, apperror.Validation("File too large", map[string]string{"profilePicture": "must be at most " + strconv.FormatInt(s.MaxPictureBytes, 10) + " bytes"})
	}
	contentType, ext, err := helpers.DetectImage(file)
	if err != nil {
		if errors.Is(err, helpers.ErrUnsupportedImage) {
			return nil, apperror.Validation(msgInvalidPicture, nil)
		}
		return nil, apperror.Internal(msgInternal, err)
	}
	if s.Pictures == nil {
		return nil, apperror.Internal(msgInternal, errors.New("picture store not configured"))
	}

	path, err := s.Pictures.Save(ctx, u.ID, file, ext, contentType)
	if err != nil {
		helpers.LogError(s.Logger, "save profile picture failed", err, logrus.Fields{"user_id": u.ID})
		return nil, apperror.Internal(msgInternal, err)
	}
	previous := u.ProfilePicture
	u.ProfilePicture = path
	if err := s.Repo.Update(ctx, u); err != nil {
		s.discardPicture(ctx, u.ID, path)
		return nil, s.storeErr(err)
	}
	if previous != "" && previous != path {
		s.discardPicture(ctx, u.ID, previous)
	}

	s.syncIndex(ctx, u)
	s.audit(ctx, AuditEvent{Type: EventPictureChanged, ActorID: actor.ID, UserID: u.ID})
	return u, nil
}

// discardPicture removes a stored picture that no record points at. Failures
// only leave an orphaned file, so they are logged.
func (s *Service) discardPicture(ctx context.Context, userID, ref string) {
	if err := s.Pictures.Remove(context.WithoutCancel(ctx), ref); err != nil {
		helpers.LogWarn(s.Logger, "remove profile picture failed", logrus.Fields{"user_id": userID, "ref": ref, "error": err.Error()})
	}
}

// EnsureAdmin creates an admin with the given credentials unless the email is
// already registered. It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return false, nil
	}
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	system := entity.Identity{Role: entity.RoleAdmin}
	_, err := s.Create(ctx, system, CreateUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     string(entity.RoleAdmin),
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindConflict {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

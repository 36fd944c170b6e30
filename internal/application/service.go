package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/internal/domain/repository"
	"github.com/oksasatya/user-management-api/pkg/apperror"
	"github.com/oksasatya/user-management-api/pkg/helpers"
)

const (
	msgUserNotFound   = "User not found"
	msgInternal       = "Internal server error"
	msgEmailInUse     = "Email already in use"
	msgInvalidPicture = "No file uploaded or invalid file type"
)

// TokenIssuer signs session tokens bound to a user id and role.
type TokenIssuer interface {
	Issue(userID, role string) (string, time.Time, error)
}

// PictureStore persists an uploaded profile picture and returns its public path or URL.
// Remove deletes a picture previously returned by Save; references the store
// does not own are ignored.
type PictureStore interface {
	Save(ctx context.Context, userID string, r io.Reader, ext, contentType string) (string, error)
	Remove(ctx context.Context, ref string) error
}

// UserIndex is the optional search index kept in sync with the store.
type UserIndex interface {
	Put(ctx context.Context, u *entity.User) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, f repository.ListFilter) ([]entity.User, int64, error)
}

type AuditPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type AuthMetrics interface {
	ObserveAuth(flow, result string)
}

// Service implements the auth flow and user management use-cases.
// Pictures, Index, Audit and Metrics are optional.
type Service struct {
	Repo     repository.UserRepository
	Tokens   TokenIssuer
	Pictures PictureStore
	Index    UserIndex
	Audit    AuditPublisher
	Metrics  AuthMetrics
	Logger   *logrus.Logger
	Now      func() time.Time

	// MaxPictureBytes caps profile picture uploads; zero disables the check.
	MaxPictureBytes int64
}

func NewService(repo repository.UserRepository, tokens TokenIssuer, logger *logrus.Logger) *Service {
	return &Service{
		Repo:   repo,
		Tokens: tokens,
		Logger: logger,
		Now:    time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// storeErr translates repository errors into client-facing errors.
func (s *Service) storeErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(msgUserNotFound)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperror.Conflict(msgEmailInUse)
	}
	return apperror.Internal(msgInternal, err)
}

// MinPasswordLen is the shortest password accepted once surrounding spaces are trimmed.
const MinPasswordLen = 6

func hashPassword(plain string) (string, error) {
	if utf8.RuneCountInString(plain) < MinPasswordLen {
		return "", apperror.Validation("Validation failed", map[string]string{"password": "should be at least 6 characters"})
	}
	hash, err := helpers.HashPassword(plain)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return "", apperror.Validation("Validation failed", map[string]string{"password": "is too long"})
	}
	if err != nil {
		return "", apperror.Internal(msgInternal, err)
	}
	return hash, nil
}

func (s *Service) observe(flow, result string) {
	if s.Metrics != nil {
		s.Metrics.ObserveAuth(flow, result)
	}
}

func (s *Service) syncIndex(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, u); err != nil {
		helpers.LogWarn(s.Logger, "search index update failed", logrus.Fields{"user_id": u.ID, "error": err.Error()})
	}
}

func (s *Service) dropIndex(ctx context.Context, id string) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Remove(ctx, id); err != nil {
		helpers.LogWarn(s.Logger, "search index delete failed", logrus.Fields{"user_id": id, "error": err.Error()})
	}
}

package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/internal/domain/repository"
	"github.com/oksasatya/user-management-api/pkg/apperror"
	"github.com/oksasatya/user-management-api/pkg/helpers"
)

const (
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid credentials"
)

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
	Address     string
}

// AuthResult is a freshly authenticated user and its session token.
type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a user with role user and signs a session token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	u := &entity.User{
		Name:        strings.TrimSpace(in.Name),
		Email:       normalizeEmail(in.Email),
		Role:        entity.RoleUser,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Address:     strings.TrimSpace(in.Address),
	}
	password := strings.TrimSpace(in.Password)
	if u.Name == "" || u.Email == "" || password == "" {
		return nil, apperror.Validation("Missing required fields", nil)
	}

	if _, err := s.Repo.GetByEmail(ctx, u.Email); err == nil {
		s.observe("register", "conflict")
		return nil, apperror.Conflict(msgUserExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, s.storeErr(err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	u.Password = hash

	// the pre-check above can race; the store's unique constraint decides
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.observe("register", "conflict")
			return nil, apperror.Conflict(msgUserExists)
		}
		return nil, s.storeErr(err)
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}

	helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"user_id": u.ID, "email": u.Email})
	s.observe("register", "ok")
	s.syncIndex(ctx, u)
	s.audit(ctx, AuditEvent{Type: EventRegistered, ActorID: u.ID, UserID: u.ID, Email: u.Email})
	return res, nil
}

// Login verifies email/password. Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, s.storeErr(err)
	}
	if u == nil {
		helpers.CompareDummy(password)
		return nil, s.loginFailed(ctx, email)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, s.loginFailed(ctx, email)
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.observe("login", "ok")
	s.audit(ctx, AuditEvent{Type: EventLoggedIn, ActorID: u.ID, UserID: u.ID, Email: u.Email})
	return res, nil
}

// Logout is stateless: the caller drops its token. It never fails.
func (s *Service) Logout(ctx context.Context, actor *entity.Identity) {
	s.observe("logout", "ok")
	if actor == nil {
		return
	}
	s.audit(ctx, AuditEvent{Type: EventLoggedOut, ActorID: actor.ID, UserID: actor.ID})
}

func (s *Service) loginFailed(ctx context.Context, email string) error {
	helpers.LogWarn(s.Logger, "login failed", logrus.Fields{"email": email})
	s.observe("login", "invalid_credentials")
	s.audit(ctx, AuditEvent{Type: EventLoginFailed, Email: email})
	return apperror.Authentication(msgInvalidCredentials)
}

func (s *Service) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		helpers.LogError(s.Logger, "sign token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, apperror.Internal(msgInternal, err)
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

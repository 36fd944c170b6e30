package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid is returned for any token that is malformed, forged or expired.
var ErrTokenInvalid = errors.New("token invalid")

// JWTManager signs and validates the session token bound to a user id and role.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration
	// Now is the clock used for issuing and validating; defaults to time.Now.
	Now func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		Secret: []byte(secret),
		TTL:    ttl,
		Now:    time.Now,
	}
}

type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (m *JWTManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Clock reports the manager's current time; cookies use it so their max age
// matches the token's expiry.
func (m *JWTManager) Clock() time.Time { return m.now() }

// Issue signs a token for userID/role and returns it with its expiry.
func (m *JWTManager) Issue(userID, role string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Verify parses tokenStr and returns its claims. Every failure collapses to ErrTokenInvalid.
func (m *JWTManager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	tkn, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.UserID == "" || claims.Role == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

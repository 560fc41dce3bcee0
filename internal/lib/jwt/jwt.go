package jwt

import (
	"errors"
	"fmt"
	"time"

	"linker_auth/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrMissingSecret = errors.New("jwt signing secret is empty")
	ErrInvalidToken  = errors.New("invalid token")
)

type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	Kind   Kind   `json:"typ"`
}

// Manager signs and checks HS256 session tokens. It holds no per-token
// state: a token becomes unusable only by expiring.
type Manager struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func New(secret string, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	m := &Manager{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// * NewToken issues a token for user that expires ttl from now.
func (m *Manager) NewToken(user models.User, kind Kind, ttl time.Duration) (string, error) {
	const op = "jwt.NewToken"

	now := m.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: user.ID,
		Role:   string(user.Role),
		Kind:   kind,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// * Validate fails closed: any signature, expiry, subject or kind problem
// yields false.
func (m *Manager) Validate(tokenStr, expectedSubject string, kind Kind) bool {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(expectedSubject),
	)
	if err != nil || !token.Valid {
		return false
	}

	return claims.Kind == kind
}

// * ExtractSubject checks the signature but not the time based claims, so an
// expired token still reveals whom it was issued to.
func (m *Manager) ExtractSubject(tokenStr string) (string, error) {
	const op = "jwt.ExtractSubject"

	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenStr, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%s: %w: missing subject", op, ErrInvalidToken)
	}

	return claims.Subject, nil
}

func (m *Manager) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}

	return m.secret, nil
}

package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
)

const defaultTokenTTL = 7 * 24 * time.Hour

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for user and the instant it stops being accepted.
func (t *TokenIssuer) Issue(user *domain.User) (string, time.Time, error) {
	now := t.now().UTC()
	exp := jwt.NewNumericDate(now.Add(t.ttl))

	claims := tokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: exp,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp.Time, nil
}

// Verify checks signature, algorithm and expiry. A token is accepted strictly
// before its exp instant.
func (t *TokenIssuer) Verify(raw string) (*domain.Principal, error) {
	if raw == "" {
		return nil, domain.ErrUnauthorized
	}

	var claims tokenClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tkn.Valid {
		return nil, errors.Join(domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	return &domain.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

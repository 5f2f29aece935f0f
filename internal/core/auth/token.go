package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

const (
	// MinSecretLen is the shortest accepted HMAC key, in bytes (256 bits).
	MinSecretLen = 32

	DefaultTokenTTL = 24 * time.Hour
	DefaultIssuer   = "cpms"
)

var ErrWeakSecret = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLen)

// tokenClaims is the JWT payload. The subject is the user's email.
type tokenClaims struct {
	UserID int64  `json:"uid"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTCodec implements ports.TokenCodec with HS256-signed JWTs. It holds no
// mutable state and is safe for concurrent use.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option customises a JWTCodec.
type Option func(*JWTCodec)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *JWTCodec) { c.now = now }
}

// WithIssuer overrides DefaultIssuer.
func WithIssuer(issuer string) Option {
	return func(c *JWTCodec) {
		if issuer != "" {
			c.issuer = issuer
		}
	}
}

func NewJWTCodec(secret string, ttl time.Duration, opts ...Option) (*JWTCodec, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	c := &JWTCodec{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for user that expires ttl from now.
func (c *JWTCodec) Issue(user *domain.User) (string, error) {
	now := c.now()
	claims := tokenClaims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, algorithm, issuer and expiry. It fails with
// domain.ErrTokenExpired once the expiry has passed and with
// domain.ErrTokenInvalid for anything else.
func (c *JWTCodec) Validate(token string) (ports.Identity, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ports.Identity{}, domain.ErrTokenExpired
		}
		return ports.Identity{}, domain.ErrTokenInvalid
	}

	if strings.TrimSpace(claims.Subject) == "" || claims.UserID <= 0 {
		return ports.Identity{}, domain.ErrTokenInvalid
	}

	return ports.Identity{
		UserID: claims.UserID,
		Email:  claims.Subject,
		Name:   claims.Name,
		Role:   domain.Role(claims.Role),
	}, nil
}

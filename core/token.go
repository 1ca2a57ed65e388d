package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of an access credential.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// AccessCredential is a signed, time-bounded proof of identity. It is never stored server-side.
type AccessCredential struct {
	Token     string
	ID        string
	Subject   int64
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies access credentials with HS256.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime given to every issued credential.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue creates a fresh credential for subject.
func (t *TokenIssuer) Issue(subject int64, role Role) (AccessCredential, error) {
	if len(t.secret) == 0 {
		return AccessCredential{}, errors.New("token secret is empty")
	}
	now := t.now().Truncate(time.Second)
	cred := AccessCredential{
		ID:        uuid.NewString(),
		Subject:   subject,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(t.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        cred.ID,
			Subject:   strconv.FormatInt(subject, 10),
			IssuedAt:  jwt.NewNumericDate(cred.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(cred.ExpiresAt),
		},
		Role: role,
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return AccessCredential{}, fmt.Errorf("sign access token: %w", err)
	}
	cred.Token = signed
	return cred, nil
}

// Parse verifies signature and expiry and returns the embedded credential.
// Every failure is reported as ErrInvalidToken.
func (t *TokenIssuer) Parse(raw string) (AccessCredential, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return AccessCredential{}, ErrInvalidToken
	}
	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || subject <= 0 {
		return AccessCredential{}, ErrInvalidToken
	}
	cred := AccessCredential{
		Token:   raw,
		ID:      claims.ID,
		Subject: subject,
		Role:    claims.Role,
	}
	if claims.IssuedAt != nil {
		cred.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		cred.ExpiresAt = claims.ExpiresAt.Time
	}
	return cred, nil
}

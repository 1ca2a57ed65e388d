package core

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", time.Hour)
	cred, err := issuer.Issue(42, RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, cred.Token)
	require.NotEmpty(t, cred.ID)
	assert.Equal(t, time.Hour, cred.ExpiresAt.Sub(cred.IssuedAt))

	parsed, err := issuer.Parse(cred.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), parsed.Subject)
	assert.Equal(t, RoleAdmin, parsed.Role)
	assert.Equal(t, cred.ID, parsed.ID)
	assert.True(t, cred.ExpiresAt.Equal(parsed.ExpiresAt))
}

func TestTokenIssuer_UniqueIDs(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", time.Hour)
	a, err := issuer.Issue(1, RoleUser)
	require.NoError(t, err)
	b, err := issuer.Issue(1, RoleUser)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", time.Hour)
	good, err := issuer.Issue(7, RoleUser)
	require.NoError(t, err)

	forged, err := issuer.Issue(8, RoleAdmin)
	require.NoError(t, err)
	goodParts := strings.Split(good.Token, ".")
	forgedParts := strings.Split(forged.Token, ".")
	tampered := goodParts[0] + "." + forgedParts[1] + "." + goodParts[2]

	expiredIssuer := NewTokenIssuer("secret", time.Minute)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredIssuer.Issue(7, RoleUser)
	require.NoError(t, err)

	other, err := NewTokenIssuer("other-secret", time.Hour).Issue(7, RoleUser)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"tampered":     tampered,
		"expired":      expired.Token,
		"other secret": other.Token,
		"alg none":     unsigned,
		"no exp":       noExp,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Equal(t, KindAuthentication, KindOf(err))
		})
	}
}

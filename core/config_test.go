package core

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "1d", want: 24 * time.Hour},
		{in: "12h", want: 12 * time.Hour},
		{in: "90 min", want: 90 * time.Minute},
		{in: "2w", want: 14 * 24 * time.Hour},
		{in: "1.5h", want: 90 * time.Minute},
		{in: "1000", want: time.Second},
		{in: "30s", want: 30 * time.Second},
		{in: " 7 Days ", want: 7 * 24 * time.Hour},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "5 parsecs", wantErr: true},
		{in: "1d2h", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAge(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func setBaseEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"NODE_ENV":            "development",
		"ALLOWED_ORIGINS":     "",
		"ACCESS_TOKEN_AGE":    "1d",
		"ACCESS_TOKEN_SECRET": "",
		"SESSION_KEY":         "",
		"COOKIE_DOMAIN":       "",
		"COOKIE_SAME_SITE":    "",
		"STORE_TIMEOUT":       "3s",
	} {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ALLOWED_ORIGINS", " http://localhost:5173 ,HTTPS://Desa.Example ,, ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"http://localhost:5173", "https://desa.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_RejectsBadAge(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ACCESS_TOKEN_AGE", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_AGE")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := Config{
		NodeEnv:           "development",
		AccessTokenTTL:    time.Hour,
		StoreTimeout:      time.Second,
		AccessTokenSecret: defaultAccessTokenSecret,
		SessionKey:        defaultSessionKey,
	}
	require.NoError(t, base.Validate())

	prod := base
	prod.NodeEnv = "production"
	assert.ErrorContains(t, prod.Validate(), "ACCESS_TOKEN_SECRET")

	prod.AccessTokenSecret = "a-real-secret"
	assert.ErrorContains(t, prod.Validate(), "SESSION_KEY")

	prod.SessionKey = "a-real-session-key"
	assert.NoError(t, prod.Validate())

	bad := base
	bad.CookieSameSite = "sometimes"
	assert.Error(t, bad.Validate())

	zero := base
	zero.AccessTokenTTL = 0
	assert.Error(t, zero.Validate())
}

func TestCookiePolicy(t *testing.T) {
	t.Parallel()

	dev := Config{NodeEnv: "development", AccessTokenTTL: time.Hour}.CookiePolicy()
	assert.Equal(t, AccessTokenCookie, dev.Name)
	assert.Equal(t, "/", dev.Path)
	assert.True(t, dev.HTTPOnly)
	assert.False(t, dev.Secure)
	assert.Equal(t, http.SameSiteLaxMode, dev.SameSite)
	assert.Equal(t, time.Hour, dev.MaxAge)

	prod := Config{NodeEnv: "production", AccessTokenTTL: time.Hour, CookieDomain: "desa.example"}.CookiePolicy()
	assert.True(t, prod.Secure)
	assert.Equal(t, http.SameSiteNoneMode, prod.SameSite)
	assert.Equal(t, "desa.example", prod.Domain)

	override := Config{NodeEnv: "production", AccessTokenTTL: time.Hour, CookieSameSite: "Strict"}.CookiePolicy()
	assert.Equal(t, http.SameSiteStrictMode, override.SameSite)

	devNone := Config{NodeEnv: "development", AccessTokenTTL: time.Hour, CookieSameSite: "none"}.CookiePolicy()
	assert.Equal(t, http.SameSiteNoneMode, devNone.SameSite)
	assert.True(t, devNone.Secure, "SameSite=None cookies must be Secure")
	assert.Equal(t, devNone.Secure, devNone.Clear().Secure)
}

func TestCookiePolicy_ClearMatchesIssue(t *testing.T) {
	t.Parallel()

	p := Config{NodeEnv: "production", AccessTokenTTL: 2 * time.Hour, CookieDomain: "desa.example"}.CookiePolicy()
	set := p.Issue("token")
	clear := p.Clear()

	assert.Equal(t, 7200, set.MaxAge)
	assert.Equal(t, -1, clear.MaxAge)
	assert.Empty(t, clear.Value)
	for _, pair := range [][2]any{
		{set.Name, clear.Name},
		{set.Path, clear.Path},
		{set.Domain, clear.Domain},
		{set.HttpOnly, clear.HttpOnly},
		{set.Secure, clear.Secure},
		{set.SameSite, clear.SameSite},
	} {
		assert.Equal(t, pair[0], pair[1])
	}
}

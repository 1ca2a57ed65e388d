package core

import (
	"net/http"
	"time"
)

// AccessTokenCookie carries the signed access credential.
const AccessTokenCookie = "accessToken"

// CookiePolicy fixes the attributes of a cookie. Setting and clearing both go through
// the same policy: browsers only drop a cookie whose Path/Domain/Secure/SameSite match.
type CookiePolicy struct {
	Name     string
	Path     string
	Domain   string
	MaxAge   time.Duration
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
}

// Issue returns the cookie that stores value for MaxAge.
func (p CookiePolicy) Issue(value string) *http.Cookie {
	c := p.base(value)
	if p.MaxAge > 0 {
		c.MaxAge = int(p.MaxAge / time.Second)
		c.Expires = time.Now().Add(p.MaxAge).UTC()
	}
	return c
}

// Clear returns the cookie that deletes a previously issued one.
func (p CookiePolicy) Clear() *http.Cookie {
	c := p.base("")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0).UTC()
	return c
}

func (p CookiePolicy) base(value string) *http.Cookie {
	return &http.Cookie{
		Name:     p.Name,
		Value:    value,
		Path:     p.Path,
		Domain:   p.Domain,
		HttpOnly: p.HTTPOnly,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}

package core

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const sessionName = "desa_session"

// NewSessionStore builds the gorilla cookie store for the session marker.
func NewSessionStore(cfg Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))
	applySessionOptions(cfg.CookiePolicy(), store.Options)
	return store
}

func applySessionOptions(policy CookiePolicy, opts *sessions.Options) {
	opts.Path = policy.Path
	opts.Domain = policy.Domain
	opts.MaxAge = int(policy.MaxAge / time.Second)
	opts.HttpOnly = true
	opts.Secure = policy.Secure
	opts.SameSite = policy.SameSite
}

// startSession records the login in the session marker.
func startSession(c *gin.Context, store sessions.Store, policy CookiePolicy, cred AccessCredential) error {
	if store == nil {
		return nil
	}
	sess, err := store.Get(c.Request, sessionName)
	if err != nil && sess == nil {
		return err
	}
	// Fresh values on every login; a stale marker is never reused.
	sess.Values = map[interface{}]interface{}{
		"user_id": cred.Subject,
		"jti":     cred.ID,
	}
	if sess.Options == nil {
		sess.Options = &sessions.Options{}
	}
	applySessionOptions(policy, sess.Options)
	return sess.Save(c.Request, c.Writer)
}

// destroySession tears down the session marker if the request carries one.
// A missing session is not an error.
func destroySession(c *gin.Context, store sessions.Store, policy CookiePolicy) error {
	if store == nil {
		return nil
	}
	if _, err := c.Request.Cookie(sessionName); err == http.ErrNoCookie {
		return nil
	}
	sess, err := store.Get(c.Request, sessionName)
	if sess == nil {
		return err
	}
	sess.Values = map[interface{}]interface{}{}
	if sess.Options == nil {
		sess.Options = &sessions.Options{}
	}
	applySessionOptions(policy, sess.Options)
	sess.Options.MaxAge = -1 // after applySessionOptions so the cookie is actually deleted
	if saveErr := sess.Save(c.Request, c.Writer); saveErr != nil {
		return saveErr
	}
	return err
}

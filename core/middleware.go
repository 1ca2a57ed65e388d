package core

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"

	ctxRequestID = "request_id"
	ctxSubject   = "auth.subject"
	ctxRole      = "auth.role"
)

// CORSMiddleware allows credentialed requests from the configured origins only.
// Requests without an Origin header (same-origin, curl) pass untouched.
func CORSMiddleware(cfg Config) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.ToLower(o)] = struct{}{}
	}
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			_, ok := allowed[strings.ToLower(origin)]
			return ok
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// RequestID tags every request with an id, reusing the caller's X-Request-ID when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Request.Header.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// ErrorHandler is the catch-all for errors recorded with c.Error that no handler
// answered: the detail is logged, the client gets a generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		for _, e := range c.Errors {
			log.Printf("request_id=%s %s %s error: %v", requestID(c), c.Request.Method, c.Request.URL.Path, e.Err)
		}
		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
	}
}

// Recovery turns panics into the same generic 500 as ErrorHandler.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("request_id=%s %s %s panic: %v", requestID(c), c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
	})
}

// RequireAuth admits requests carrying a valid accessToken cookie and exposes
// the credential's subject and role to later handlers.
func RequireAuth(tokens *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(AccessTokenCookie)
		if err != nil || strings.TrimSpace(raw) == "" {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}
		cred, err := tokens.Parse(raw)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}
		c.Set(ctxSubject, cred.Subject)
		c.Set(ctxRole, cred.Role)
		c.Next()
	}
}

// currentSubject returns the user id stored by RequireAuth.
func currentSubject(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxSubject)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func currentRole(c *gin.Context) Role {
	v, _ := c.Get(ctxRole)
	role, _ := v.(Role)
	return role
}

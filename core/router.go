package core

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// Dependencies are the constructed services the router wires into handlers.
// Optional groups are mounted only when their dependencies are set.
type Dependencies struct {
	Auth     AuthService
	Tokens   *TokenIssuer
	Sessions sessions.Store
	Users    UserRepository

	AnnouncementCategories CategoryRepository
	NewsCategories         CategoryRepository
	Announcements          AnnouncementRepository
	News                   NewsRepository

	Submissions SubmissionRepository
	Queue       JobQueue
	Metrics     *MetricsService

	StartedAt time.Time
}

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(cfg Config, deps Dependencies) *gin.Engine {
	if deps.StartedAt.IsZero() {
		deps.StartedAt = time.Now()
	}
	r := gin.New()
	r.Use(RequestID(), RequestLogger(), Recovery(), CORSMiddleware(cfg), ErrorHandler())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := RequireAuth(deps.Tokens)
	adminOnly := []gin.HandlerFunc{requireAuth, AdminOnly()}

	api := r.Group("/api/v1")

	authHandler := NewAuthHandler(deps.Auth, cfg.CookiePolicy(), deps.Sessions)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.POST("/register-admin", authHandler.RegisterAdmin)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", requireAuth, authHandler.Me)
	}

	api.GET("/protected", requireAuth, func(c *gin.Context) {
		subject, _ := currentSubject(c)
		c.JSON(http.StatusOK, gin.H{"message": "Access granted", "userId": subject, "role": currentRole(c)})
	})

	if deps.Users != nil {
		users := NewUserHandler(deps.Users)
		g := api.Group("/users", adminOnly...)
		g.GET("", users.List)
		g.GET("/:id", users.Get)
		g.DELETE("/:id", users.Delete)
	}

	mountCategories := func(path string, repo CategoryRepository) {
		if repo == nil {
			return
		}
		h := NewCategoryHandler(repo)
		g := api.Group(path)
		g.GET("", h.List)
		g.POST("", append(adminOnly, h.Create)...)
		g.DELETE("/:id", append(adminOnly, h.Delete)...)
	}
	mountCategories("/kategori", deps.AnnouncementCategories)
	mountCategories("/berita-kategori", deps.NewsCategories)

	if deps.Announcements != nil {
		h := NewAnnouncementHandler(deps.Announcements)
		g := api.Group("/pengumuman")
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.POST("", append(adminOnly, h.Create)...)
		g.PATCH("/:id", append(adminOnly, h.Update)...)
		g.DELETE("/:id", append(adminOnly, h.Delete)...)
	}

	if deps.News != nil {
		h := NewNewsHandler(deps.News)
		g := api.Group("/berita")
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.POST("", append(adminOnly, h.Create)...)
		g.PATCH("/:id", append(adminOnly, h.Update)...)
		g.DELETE("/:id", append(adminOnly, h.Delete)...)
	}

	if deps.Submissions != nil && deps.Queue != nil {
		h := NewSubmissionHandler(deps.Submissions, deps.Queue)
		g := api.Group("/submissions", requireAuth)
		g.POST("", h.Create)
		g.GET("", h.List)
		g.GET("/letter-types", h.LetterTypes)
		g.GET("/:id", h.Get)
	}

	if deps.Metrics != nil {
		var counter StatusCounter
		if deps.Submissions != nil {
			counter = deps.Submissions
		}
		h := NewMetricsHandler(deps.Metrics, counter, deps.StartedAt)
		admin := api.Group("/admin", adminOnly...)
		metrics := admin.Group("/metrics")
		{
			metrics.GET("/overview", h.Overview)
			metrics.GET("/queues", h.Queues)
			metrics.GET("/workers", h.Workers)
			metrics.GET("/workers/:id", h.Worker)
		}
		admin.GET("/system/status", h.SystemStatus)
	}

	return r
}

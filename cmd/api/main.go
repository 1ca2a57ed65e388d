package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"desa-api/core"
)

func main() {
	cfg, err := core.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logCloser, err := core.SetupLogging(cfg, "api")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens := core.NewTokenIssuer(cfg.AccessTokenSecret, cfg.AccessTokenTTL)
	deps := core.Dependencies{
		Tokens:    tokens,
		Sessions:  core.NewSessionStore(cfg),
		StartedAt: time.Now(),
	}

	if cfg.UsesMemoryStore() {
		log.Printf("DATABASE_URL=%s: using in-memory user store; content and submissions disabled", cfg.DatabaseURL)
		deps.Users = core.NewMemUserRepository()
	} else {
		db, err := core.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			if err := core.RunMigrations(ctx, db); err != nil {
				log.Fatalf("failed to run migrations: %v", err)
			}
		}

		deps.Users = core.NewPgUserRepository(db)
		deps.AnnouncementCategories = core.NewPgCategoryRepository(db, core.AnnouncementCategoryTable)
		deps.NewsCategories = core.NewPgCategoryRepository(db, core.NewsCategoryTable)
		deps.Announcements = core.NewPgAnnouncementRepository(db)
		deps.News = core.NewPgNewsRepository(db)

		if cfg.SeedFile != "" {
			seed, err := core.LoadSeedFile(cfg.SeedFile)
			if err != nil {
				log.Fatalf("failed to load seed file: %v", err)
			}
			if _, err := core.SeedCategories(ctx, seed, deps.AnnouncementCategories, deps.NewsCategories); err != nil {
				log.Fatalf("failed to seed categories: %v", err)
			}
		}

		redisClient, err := core.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer redisClient.Close()

		deps.Submissions = core.NewPgSubmissionRepository(db)
		deps.Queue = core.NewRedisQueue(redisClient)
		deps.Metrics = core.NewMetricsService(redisClient)
	}

	if err := core.BootstrapAdmin(ctx, deps.Users, cfg); err != nil {
		log.Fatalf("bootstrap admin failed: %v", err)
	}

	deps.Auth = core.NewRepositoryAuthService(deps.Users, tokens, core.WithStoreTimeout(cfg.StoreTimeout))
	router := core.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("starting api server on %s (env=%s)", srv.Addr, cfg.NodeEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

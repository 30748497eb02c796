package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/investor-portal/internal/cache"
	"github.com/iliyamo/investor-portal/internal/config"
	"github.com/iliyamo/investor-portal/internal/database"
	"github.com/iliyamo/investor-portal/internal/handler"
	"github.com/iliyamo/investor-portal/internal/queue"
	"github.com/iliyamo/investor-portal/internal/ratelimit"
	"github.com/iliyamo/investor-portal/internal/repository"
	"github.com/iliyamo/investor-portal/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	limits := config.LoadAbuseLimits()
	cacheCfg := config.LoadCacheConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName,
		cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// A nil Redis client selects the no-op cache; the portal serves every
	// read from the store in that case.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, running without cache")
	}
	store := cache.Select(cacheCfg.Enabled, rdb, cacheCfg.Prefix)

	limiter := ratelimit.New()
	defer limiter.Stop()

	accounts := repository.NewAccountRepo(db)
	invites := repository.NewInviteRepo(db)
	properties := repository.NewPropertyRepo(db)

	enlist := handler.NewEnlistHandler(accounts, limiter, limits)
	auth := handler.NewAuthHandler(cfg, accounts, limiter, limits)
	admin := handler.NewAdminHandler(cfg, accounts, properties, store, cacheCfg)
	invite := handler.NewInviteHandler(invites, limiter, limits)
	property := handler.NewPropertyHandler(properties, store, cacheCfg)

	// Audit consumer runs for the life of the process and reconnects on
	// broker failures.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterEnlistment(e, enlist, auth, invite)
	router.RegisterAdmin(e, admin, invite, property, cfg.JWTSecret)
	router.RegisterPublic(e, property)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

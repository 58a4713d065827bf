package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/apperr"
	"github.com/openpoi/poi-directory/internal/config"
	"github.com/openpoi/poi-directory/internal/database"
	"github.com/openpoi/poi-directory/internal/handler"
	"github.com/openpoi/poi-directory/internal/middleware"
	"github.com/openpoi/poi-directory/internal/ratelimit"
	"github.com/openpoi/poi-directory/internal/repository"
	"github.com/openpoi/poi-directory/internal/router"
	"github.com/openpoi/poi-directory/internal/service"
	"github.com/openpoi/poi-directory/internal/utils"
)

func main() {
	_ = godotenv.Load() // pick up .env in development; absent in containers

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	keys := repository.NewAPIKeyRepo(db)
	pois := repository.NewPOIRepo(db)

	if err := roles.Seed(ctx); err != nil {
		log.Fatalf("seed roles: %v", err)
	}

	limiter := buildLimiter(rlCfg)

	parse := func(raw string) (uint64, error) {
		claims, err := utils.ParseAccessToken(cfg.JWTSecret, raw)
		if err != nil {
			return 0, err
		}
		return claims.UserID()
	}
	bearer := middleware.BearerAuth(parse, users)
	apikey := middleware.APIKeyAuth(keys)
	searchLimit := middleware.RateLimit(limiter, ratelimit.MustParseLimit(rlCfg.SearchLimit))
	detailLimit := middleware.RateLimit(limiter, ratelimit.MustParseLimit(rlCfg.DetailLimit))

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.ErrorHandler(cfg.Dev())

	events := service.NewPublisher(cfg.AMQPURL)
	defer events.Close()

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, roles), handler.NewAPIKeyHandler(keys), bearer)
	router.RegisterAdmin(e, handler.NewPOIAdminHandler(pois, events), bearer)
	router.RegisterPublic(e, handler.NewPOIPublicHandler(pois), apikey, searchLimit, detailLimit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, rate-limit backend=%s)", addr, cfg.Env, rlCfg.Backend)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// buildLimiter wires the configured admission backend.  Redis is used when
// requested and reachable; otherwise counters stay in process memory.  A
// nil limiter (limiting disabled) makes the middleware a no-op.
func buildLimiter(cfg config.RateLimitConfig) *ratelimit.Limiter {
	if !cfg.Enabled {
		return nil
	}
	var store ratelimit.Store
	if cfg.Backend == "redis" {
		if rdb := config.NewRedisClient(); rdb != nil {
			store = ratelimit.NewRedisStore(rdb)
		} else {
			log.Printf("ratelimit: redis unreachable, falling back to in-memory counters")
		}
	}
	if store == nil {
		store = ratelimit.NewMemoryStore()
	}
	return ratelimit.NewLimiter(store, cfg.Prefix)
}

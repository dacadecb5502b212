package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/activekidz/roster-resolution/internal/config"
	"github.com/activekidz/roster-resolution/internal/database"
	"github.com/activekidz/roster-resolution/internal/handler"
	appmw "github.com/activekidz/roster-resolution/internal/middleware"
	"github.com/activekidz/roster-resolution/internal/queue"
	"github.com/activekidz/roster-resolution/internal/repository"
	"github.com/activekidz/roster-resolution/internal/resolution"
	"github.com/activekidz/roster-resolution/internal/router"
	"github.com/activekidz/roster-resolution/internal/signature"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	orders := repository.NewOrderRepo(db)
	catalog := repository.NewCatalogRepo(db)
	players := repository.NewPlayerRepo(db)
	roster := repository.NewRosterRepo(db)

	// The signature generator and extractor resolve against in-memory
	// tables loaded once at startup.  The taxonomy registry changes
	// rarely; a restart picks up new terms.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	terms, err := catalog.LoadTerms(ctx)
	if err != nil {
		log.Fatalf("load taxonomy terms: %v", err)
	}
	tables := signature.DefaultTables()
	tables.CanonicalLang = cfg.CanonicalLang
	signer := signature.NewGenerator(signature.NewTermTable(terms), tables)

	extractTables := resolution.DefaultExtractTables()
	if venues, err := catalog.KnownVenues(ctx, cfg.CanonicalLang); err != nil {
		log.Printf("load venues: %v; falling back to built-in venue table", err)
	} else if len(venues) > 0 {
		extractTables.KnownVenues = venues
	}
	extractor := resolution.NewExtractor(extractTables)
	matcher := resolution.NewMatcher(resolution.DefaultStrategies(), resolution.NewValidator())

	orch := resolution.NewOrchestrator(orders, catalog, players, roster, extractor, matcher, signer)

	e := echo.New()

	// Redis is optional: when unreachable, caching and rate limiting are
	// disabled and the API still works.
	if rdb := config.NewRedisClient(); rdb != nil {
		e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		e.Use(appmw.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	auth := handler.NewAuthHandler(cfg, users, tokens)
	rosterH := handler.NewRosterHandler(orch, orders, cfg.RosterBatch)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterRoster(e, rosterH, cfg.JWTSecret)

	// Background consumer mirrors build summaries into logs/roster.log.
	go func() {
		if err := queue.StartBuildConsumer(); err != nil {
			log.Printf("build consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

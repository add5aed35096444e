package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/casavia/brokerage-api/internal/config"
	"github.com/casavia/brokerage-api/internal/database"
	"github.com/casavia/brokerage-api/internal/handler"
	"github.com/casavia/brokerage-api/internal/middleware"
	"github.com/casavia/brokerage-api/internal/queue"
	"github.com/casavia/brokerage-api/internal/repository"
	"github.com/casavia/brokerage-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories share the one pool.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	properties := repository.NewPropertyRepo(db)
	inquiries := repository.NewInquiryRepo(db)
	events := repository.NewCalendarRepo(db)
	activity := repository.NewActivityRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(properties, inquiries, activity)
	agentH := handler.NewAgentHandler(inquiries, activity)
	propertyH := handler.NewPropertyHandler(properties, activity)
	calendarH := handler.NewCalendarHandler(events, inquiries, activity)
	adminH := handler.NewAdminHandler(cfg, users, inquiries, properties, activity)
	healthH := &handler.HealthHandler{DB: db}

	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	// Redis backs the public response cache and the inquiry rate limiter.
	// Both degrade to pass-through when Redis is unreachable.
	var cacheMW, limitMW echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
		limitMW = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	} else {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	router.RegisterRoutes(e, healthH)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, cacheMW, limitMW)
	router.RegisterAgent(e, agentH, propertyH, calendarH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, propertyH, cfg.JWTSecret)

	// Background consumer for inquiry.received and property.sold events.
	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

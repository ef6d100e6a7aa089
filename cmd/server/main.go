package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation/internal/config"
	"github.com/iliyamo/event-reservation/internal/database"
	"github.com/iliyamo/event-reservation/internal/handler"
	custommw "github.com/iliyamo/event-reservation/internal/middleware"
	"github.com/iliyamo/event-reservation/internal/queue"
	"github.com/iliyamo/event-reservation/internal/repository"
	"github.com/iliyamo/event-reservation/internal/router"
	"github.com/iliyamo/event-reservation/internal/service"
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

	// Redis backs the response cache and the rate limiter.  A nil client
	// disables both; the API still works without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: cache and rate limiting disabled")
	}

	// Repositories.
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	eventRepo := repository.NewEventRepo(db)
	resRepo := repository.NewReservationRepo(db)
	reviewRepo := repository.NewReviewRepo(db)

	// Core services.  The broker publisher is best-effort: transitions
	// commit whether or not RabbitMQ is reachable.
	notifier := queue.NewPublisher("")
	ledger := service.NewCapacityLedger(eventRepo, resRepo)
	reservations := service.NewReservationService(ledger, resRepo, notifier)
	events := service.NewEventService(eventRepo, resRepo, reservations, ledger, notifier)
	reviews := service.NewReviewService(resRepo, reviewRepo)

	// Handlers.
	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	organizerHandler := handler.NewOrganizerEventHandler(events, eventRepo, resRepo)
	reservationHandler := handler.NewReservationHandler(reservations, resRepo)
	reviewHandler := handler.NewReviewHandler(reviews)
	publicHandler := handler.NewPublicHandler(eventRepo, reviewRepo, events)

	e := echo.New()
	e.Use(custommw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// The browse cache is route-scoped: its keys carry no user identity,
	// so it must never see an authenticated response.
	browseCache := custommw.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler, browseCache)
	router.RegisterOrganizer(e, organizerHandler, cfg.JWTSecret)
	router.RegisterReservations(e, reservationHandler, reviewHandler, cfg.JWTSecret)

	// Background workers: the completion sweep flips ended events to
	// COMPLETED; the consumer appends broker notifications to a log file.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go events.RunCompletionSweep(ctx, cfg.SweepInterval)
	go func() {
		if err := queue.StartConsumer(); err != nil {
			log.Printf("events consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

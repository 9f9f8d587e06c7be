package main // Entry point package

import (
	"context" // startup timeout for schema bootstrap
	"log"     // Logging library
	"time"    // timeout durations

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/room-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/room-reservation/internal/database"   // MySQL connection and schema bootstrap
	"github.com/iliyamo/room-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/room-reservation/internal/middleware" // rate limiting and caching middleware
	"github.com/iliyamo/room-reservation/internal/queue"      // reservation event consumer
	"github.com/iliyamo/room-reservation/internal/repository" // data access layer
	"github.com/iliyamo/room-reservation/internal/router"     // Internal router setup
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	roomHandler := handler.NewRoomHandler(rooms)
	reservationHandler := handler.NewReservationHandler(rooms, reservations)
	reservationHandler.PublishEvent = true

	// Redis backs the rate limiter and the catalog response cache.  When
	// the client is nil both middlewares degrade to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; rate limiting and caching disabled")
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterRooms(e, roomHandler, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterReservations(e, reservationHandler, cfg.JWTSecret)

	// Consume reservation.confirmed events in the background; the consumer
	// reconnects on broker failures and never stops the server.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}

package main

import (
	"context"
	"log"
	"time"

	"github.com/anonto42/campus-social/backend/internal/middleware"
	"github.com/anonto42/campus-social/backend/internal/repositories"
	"github.com/anonto42/campus-social/backend/internal/repositories/memory"
	"github.com/anonto42/campus-social/backend/internal/router"
	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/anonto42/campus-social/backend/pkg/config"
	"github.com/anonto42/campus-social/backend/pkg/firebase"
	"github.com/anonto42/campus-social/backend/pkg/redislock"
	"github.com/labstack/echo/v4"
)

func init() {
	time.Local = time.UTC
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	ctx := context.Background()

	var repos repositories.Set
	switch cfg.Storage {
	case config.StorageMemory:
		repos = memory.NewStore().Set()
		log.Println("Using in-memory storage; data is lost on restart.")
	default:
		db, err := config.InitDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize databases: %v", err)
		}
		defer db.CloseDB()

		if err := repositories.AutoMigrate(db.Postgres); err != nil {
			log.Fatalf("Failed to auto migrate models: %v", err)
		}
		log.Println("PostgreSQL auto-migrations completed for all models.")
		if err := repositories.NewMongoPostRepository(db.MongoDB).EnsureIndexes(ctx); err != nil {
			log.Fatalf("Failed to create post indexes: %v", err)
		}
		repos = repositories.NewStoreSet(db.Postgres, db.MongoDB)
	}

	svcCfg := services.Config{
		AnonMinFriends:      cfg.AnonMinFriends,
		PersonaMaxChanges:   cfg.PersonaMaxChanges,
		PersonaChangeWindow: cfg.PersonaChangeWindow,
	}
	rdb, err := config.InitRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		svcCfg.Locker = redislock.New(rdb, 5*time.Second, 20, 50*time.Millisecond)
	}

	opts := router.Options{
		Tokens:   middleware.NewJWTVerifier(cfg.JWTSecret, cfg.JWTTTL),
		Services: svcCfg,
	}
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	if firebaseApp != nil {
		opts.Firebase = middleware.NewFirebaseVerifier(firebaseApp.AuthClient, repos.Users)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	config.SetupMiddleware(e)
	router.SetupRoutes(e, repos, opts)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

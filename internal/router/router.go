package router

import (
	"log"
	"net/http"

	"github.com/anonto42/campus-social/backend/internal/handlers"
	"github.com/anonto42/campus-social/backend/internal/middleware"
	"github.com/anonto42/campus-social/backend/internal/repositories"
	"github.com/anonto42/campus-social/backend/internal/services"
	"github.com/anonto42/campus-social/backend/validators"
	"github.com/labstack/echo/v4"
)

// Options carries what the routes need beyond storage.
type Options struct {
	// Tokens issues and verifies the server's own JWTs.
	Tokens *middleware.JWTVerifier
	// Firebase is nil when Firebase login is disabled.
	Firebase *middleware.FirebaseVerifier
	Services services.Config
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, repos repositories.Set, opts Options) *services.Services {
	e.HTTPErrorHandler = handlers.ErrorHandler
	e.Validator = validators.NewValidator()

	svc := services.New(repos, opts.Services)

	var verifier middleware.TokenVerifier = opts.Tokens
	var firebase handlers.FirebaseIdentifier
	if opts.Firebase != nil {
		verifier = middleware.ChainVerifier{opts.Tokens, opts.Firebase}
		firebase = opts.Firebase
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "campus social api"})
	})

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(repos.Users, repos.Actors, opts.Tokens, firebase)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	feedHandler := handlers.NewFeedHandler(svc.Resolver, svc.Feed)

	// Public feed, token optional
	public := e.Group("/api/v1/public",
		middleware.OptionalAuthenticate(verifier),
		middleware.RequireActiveUser(repos.Users))
	feedHandler.RegisterPublicRoutes(public)
	log.Println("Public routes configured.")

	// --- Protected routes (require authentication) ---
	api := e.Group("/api/v1",
		middleware.Authenticate(verifier),
		middleware.RequireActiveUser(repos.Users))
	log.Println("Authentication middleware applied to /api/v1 group.")

	handlers.NewUserHandler(repos.Users, svc.Resolver, svc.Personas).RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	handlers.NewPersonaHandler(svc.Personas).RegisterPersonaRoutes(api)
	log.Println("Persona routes configured.")

	handlers.NewFriendshipHandler(svc.Resolver, svc.Friends).RegisterFriendshipRoutes(api)
	log.Println("Friendship routes configured.")

	handlers.NewPostHandler(svc.Resolver, svc.Posts, svc.Feed).RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	handlers.NewEngagementHandler(svc.Resolver, svc.Ledger).RegisterEngagementRoutes(api)
	log.Println("Engagement routes configured.")

	handlers.NewCommentHandler(svc.Resolver, svc.Comments).RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	feedHandler.RegisterFeedRoutes(api)
	log.Println("Feed routes configured.")

	handlers.NewNotificationHandler(svc.Resolver, svc.Notifications).RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	admin := api.Group("/admin", middleware.RequireAdmin())
	handlers.NewAdminHandler(svc.Resolver, svc.Admin).RegisterAdminRoutes(admin)
	log.Println("Admin routes configured.")

	log.Println("All routes configured.")
	return svc
}

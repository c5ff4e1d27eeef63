package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/adilzhan-s/crowdsolve/internal/config"
	"github.com/adilzhan-s/crowdsolve/internal/database"
	"github.com/adilzhan-s/crowdsolve/internal/handlers"
	"github.com/adilzhan-s/crowdsolve/internal/realtime"
	"github.com/adilzhan-s/crowdsolve/internal/repository"
	cronjobs "github.com/adilzhan-s/crowdsolve/internal/scheduler"
	"github.com/adilzhan-s/crowdsolve/internal/services"
	"github.com/adilzhan-s/crowdsolve/pkg/logger"
	"github.com/adilzhan-s/crowdsolve/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	solutionRepo := repository.NewSolutionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// --- Realtime hub ---
	hub := realtime.NewHub()

	// --- Services ---
	notificationService := services.NewNotificationService(notificationRepo, hub)
	userService := services.NewUserService(userRepo)
	problemService := services.NewProblemService(problemRepo, solutionRepo, userRepo, notificationService, hub)
	solutionService := services.NewSolutionService(solutionRepo, problemRepo, userRepo, notificationService, hub)
	commentService := services.NewCommentService(commentRepo, solutionRepo, userRepo, notificationService, hub)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(userService, cfg)
	problemHandler := handlers.NewProblemHandler(problemService, cfg.UploadDir)
	solutionHandler := handlers.NewSolutionHandler(solutionService, cfg.UploadDir)
	commentHandler := handlers.NewCommentHandler(commentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	userHandler := handlers.NewUserHandler(userService, problemService, solutionService)
	wsHandler := handlers.NewWSHandler(hub, cfg.JWTSecret)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	// Auth routes
	api.HandleFunc("/auth/register", authHandler.RegisterHandler).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.LoginHandler).Methods("POST")

	protectedAuthRoutes := api.PathPrefix("/auth").Subrouter()
	protectedAuthRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedAuthRoutes.HandleFunc("/profile", authHandler.ProfileHandler).Methods("GET")
	protectedAuthRoutes.HandleFunc("/profile", authHandler.UpdateProfileHandler).Methods("PUT")

	// Public problem routes
	api.HandleFunc("/problems", problemHandler.GetProblemsHandler).Methods("GET")
	api.HandleFunc("/problems/{id}", problemHandler.GetProblemHandler).Methods("GET")

	// Protected problem routes
	protectedProblemRoutes := api.PathPrefix("/problems").Subrouter()
	protectedProblemRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedProblemRoutes.HandleFunc("", problemHandler.CreateProblemHandler).Methods("POST")
	protectedProblemRoutes.HandleFunc("/{id}", problemHandler.UpdateProblemHandler).Methods("PUT")
	protectedProblemRoutes.HandleFunc("/{id}", problemHandler.DeleteProblemHandler).Methods("DELETE")
	protectedProblemRoutes.HandleFunc("/{id}/upvote", problemHandler.UpvoteProblemHandler).Methods("POST")

	// Solution routes
	api.HandleFunc("/solutions/problem/{problemId}", solutionHandler.GetSolutionsHandler).Methods("GET")

	protectedSolutionRoutes := api.PathPrefix("/solutions").Subrouter()
	protectedSolutionRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedSolutionRoutes.HandleFunc("", solutionHandler.CreateSolutionHandler).Methods("POST")
	protectedSolutionRoutes.HandleFunc("/{id}", solutionHandler.UpdateSolutionHandler).Methods("PUT")
	protectedSolutionRoutes.HandleFunc("/{id}", solutionHandler.DeleteSolutionHandler).Methods("DELETE")
	protectedSolutionRoutes.HandleFunc("/{id}/upvote", solutionHandler.UpvoteSolutionHandler).Methods("POST")
	protectedSolutionRoutes.HandleFunc("/{id}/accept", solutionHandler.AcceptSolutionHandler).Methods("POST")

	// Comment routes
	api.HandleFunc("/comments/solution/{solutionId}", commentHandler.GetCommentsHandler).Methods("GET")

	protectedCommentRoutes := api.PathPrefix("/comments").Subrouter()
	protectedCommentRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedCommentRoutes.HandleFunc("", commentHandler.CreateCommentHandler).Methods("POST")
	protectedCommentRoutes.HandleFunc("/{id}", commentHandler.UpdateCommentHandler).Methods("PUT")
	protectedCommentRoutes.HandleFunc("/{id}", commentHandler.DeleteCommentHandler).Methods("DELETE")
	protectedCommentRoutes.HandleFunc("/{id}/upvote", commentHandler.UpvoteCommentHandler).Methods("POST")

	// Notification routes (all require auth)
	protectedNotificationRoutes := api.PathPrefix("/notifications").Subrouter()
	protectedNotificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedNotificationRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/stats", notificationHandler.GetStatsHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/read-all", notificationHandler.MarkAllAsReadHandler).Methods("PUT")
	protectedNotificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("PUT")
	protectedNotificationRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Public user routes
	api.HandleFunc("/users/leaderboard", userHandler.GetLeaderboardHandler).Methods("GET")
	api.HandleFunc("/users/{id}", userHandler.GetUserHandler).Methods("GET")
	api.HandleFunc("/users/{id}/problems", userHandler.GetUserProblemsHandler).Methods("GET")
	api.HandleFunc("/users/{id}/solutions", userHandler.GetUserSolutionsHandler).Methods("GET")

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// WebSocket attach
	router.HandleFunc("/ws", wsHandler.AttachHandler)

	// Static file serving for uploaded images
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background notification retention sweep
	cronjobs.StartRetentionCronJobs(notificationService)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Madiyar4554/StudentPlanner/internal/config"
	"github.com/Madiyar4554/StudentPlanner/internal/database"
	"github.com/Madiyar4554/StudentPlanner/internal/handlers"
	"github.com/Madiyar4554/StudentPlanner/internal/repository"
	"github.com/Madiyar4554/StudentPlanner/internal/scheduler"
	"github.com/Madiyar4554/StudentPlanner/internal/services"
	"github.com/Madiyar4554/StudentPlanner/pkg/logger"
	"github.com/Madiyar4554/StudentPlanner/pkg/middleware"
	"github.com/Madiyar4554/StudentPlanner/pkg/webpush"
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
	taskRepo := repository.NewTaskRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)

	// --- Web Push ---
	// Without a VAPID key pair the API still runs, but nothing is
	// delivered and the background scheduler never starts.
	var pushClient *webpush.Client
	if cfg.PushEnabled() {
		signer, err := webpush.NewSigner(cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
		if err != nil {
			log.Fatalf("Invalid VAPID private key: %v", err)
		}
		pushClient = webpush.NewClient(signer)
	} else {
		logger.Log.Warn("VAPID keys not configured, push notifications disabled")
	}

	// --- Services ---
	userService := services.NewUserService(userRepo, cfg.FrontendURL)
	achievementService := services.NewAchievementService(achievementRepo, taskRepo, goalRepo)
	taskService := services.NewTaskService(taskRepo, achievementService)
	goalService := services.NewGoalService(goalRepo, achievementService)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo)
	taskStatusService := services.NewTaskStatusService(taskRepo)

	var pushService *services.PushService
	if pushClient != nil {
		pushService = services.NewPushService(subscriptionRepo, pushClient)
	} else {
		pushService = services.NewPushService(subscriptionRepo, nil)
	}
	notificationService := services.NewNotificationService(pushService, notificationRepo, taskRepo, userRepo, subscriptionRepo)
	achievementService.SetNotifier(notificationService)

	if err := achievementService.SeedCatalog(context.Background()); err != nil {
		logger.Log.Errorf("Failed to seed achievement catalog: %v", err)
	}

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, subscriptionService, notificationService, cfg)
	taskHandler := handlers.NewTaskHandler(taskService)
	goalHandler := handlers.NewGoalHandler(goalService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/users/verify", userHandler.VerifyEmailHandler).Methods("GET")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.MeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/me", userHandler.UpdateProfileHandler).Methods("PATCH")
	protectedUserRoutes.HandleFunc("/me/password", userHandler.ChangePasswordHandler).Methods("PATCH")
	protectedUserRoutes.HandleFunc("/vapid-public-key", userHandler.VapidPublicKeyHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/push-subscription", userHandler.SavePushSubscriptionHandler).Methods("POST")
	protectedUserRoutes.HandleFunc("/push-subscription", userHandler.DeletePushSubscriptionHandler).Methods("DELETE")
	protectedUserRoutes.HandleFunc("/test-notification", userHandler.TestNotificationHandler).Methods("POST")

	// Task routes
	protectedTaskRoutes := router.PathPrefix("/tasks").Subrouter()
	protectedTaskRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedTaskRoutes.HandleFunc("", taskHandler.CreateTaskHandler).Methods("POST")
	protectedTaskRoutes.HandleFunc("", taskHandler.GetTasksHandler).Methods("GET")
	protectedTaskRoutes.HandleFunc("/{id}", taskHandler.GetTaskHandler).Methods("GET")
	protectedTaskRoutes.HandleFunc("/{id}", taskHandler.UpdateTaskHandler).Methods("PUT")
	protectedTaskRoutes.HandleFunc("/{id}", taskHandler.DeleteTaskHandler).Methods("DELETE")
	protectedTaskRoutes.HandleFunc("/{id}/complete", taskHandler.CompleteTaskHandler).Methods("POST")

	// Goal routes
	protectedGoalRoutes := router.PathPrefix("/goals").Subrouter()
	protectedGoalRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedGoalRoutes.HandleFunc("", goalHandler.CreateGoalHandler).Methods("POST")
	protectedGoalRoutes.HandleFunc("", goalHandler.GetGoalsHandler).Methods("GET")
	protectedGoalRoutes.HandleFunc("/{id}", goalHandler.GetGoalHandler).Methods("GET")
	protectedGoalRoutes.HandleFunc("/{id}", goalHandler.UpdateGoalHandler).Methods("PUT")
	protectedGoalRoutes.HandleFunc("/{id}", goalHandler.DeleteGoalHandler).Methods("DELETE")
	protectedGoalRoutes.HandleFunc("/{id}/progress", goalHandler.UpdateGoalProgressHandler).Methods("PATCH")

	// Achievement routes
	protectedAchievementRoutes := router.PathPrefix("/achievements").Subrouter()
	protectedAchievementRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedAchievementRoutes.HandleFunc("", achievementHandler.GetCatalogHandler).Methods("GET")
	protectedAchievementRoutes.HandleFunc("/my", achievementHandler.GetUserAchievementsHandler).Methods("GET")

	// Notification log routes
	protectedNotificationRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedNotificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedNotificationRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/{id}/opened", notificationHandler.MarkOpenedHandler).Methods("PATCH")
	protectedNotificationRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Background scheduler ---
	var wg sync.WaitGroup
	if cfg.PushEnabled() {
		sched := scheduler.New(taskStatusService, notificationService)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.Run(ctx)
		}()
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(router),
	}

	go func() {
		fmt.Printf("Server running on port %s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("Server shutdown error: %v", err)
	}
	wg.Wait()
}

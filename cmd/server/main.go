package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"vocabtrainer/internal/config"
	"vocabtrainer/internal/database"
	"vocabtrainer/internal/handlers"
	"vocabtrainer/internal/lexicon"
	"vocabtrainer/internal/repository"
	"vocabtrainer/internal/security"
	"vocabtrainer/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load word lists. A missing source leaves that collection empty.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), time.Minute)
	sources, err := lexicon.NewLoader(nil).LoadAll(loadCtx, cfg.GeneralLexicon, cfg.AcademicLexicon)
	cancelLoad()
	if err != nil {
		log.Printf("Warning: failed to load lexicon: %v", err)
	}
	log.Printf("Lexicon loaded: %d general, %d academic words", len(sources.General), len(sources.Academic))

	emailService, err := service.NewEmailService(context.Background(), cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	if !emailService.IsEnabled() {
		log.Println("Email disabled: SES_FROM_EMAIL is not set")
	}

	// Initialize repositories
	learnerRepo := repository.NewLearnerRepository(db)
	repos := service.TrainerRepositories{
		Settings: repository.NewSettingsRepository(db),
		Study:    repository.NewStudySetRepository(db),
		Progress: repository.NewProgressRepository(db),
		Rounds:   repository.NewRoundRepository(db),
	}

	// Initialize services
	tokens := security.NewTokenManager(cfg.JWTSecret, "vocabtrainer")
	authService := service.NewAuthService(learnerRepo, tokens, emailService, cfg.SessionDuration)
	trainerService := service.NewTrainerService(sources, cfg.AcademicRankOffset, cfg.Trainer, repos, emailService)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name: "google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	limiter := security.NewRateLimiter(10, time.Minute)
	defer limiter.Close()

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, limiter)
	authHandler := handlers.NewAuthHandler(authService, oauthProviders, security.NewStateSigner(cfg.JWTSecret), cfg.AppBaseURL)
	trainerHandler := handlers.NewTrainerHandler(trainerService)
	studyHandler := handlers.NewStudyHandler(trainerService)

	mux := http.NewServeMux()
	handlers.Routes(mux, middleware, authHandler, trainerHandler, studyHandler, handlers.Healthz(db))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stopCleanup := make(chan struct{})
	go cleanupExpiredSessions(authService, trainerService, cfg.SessionDuration, stopCleanup)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	close(stopCleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Warning: graceful shutdown failed: %v", err)
	}

	// Flush queued progress writes before the database closes
	trainerService.Close()
}

// cleanupExpiredSessions periodically removes expired sessions and the trainer
// state of learners idle for longer than a session lasts
func cleanupExpiredSessions(authService *service.AuthService, trainerService *service.TrainerService, maxIdle time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := authService.CleanupExpiredSessions(); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
			if n := trainerService.EvictIdle(maxIdle); n > 0 {
				log.Printf("Evicted trainer state for %d idle learners", n)
			}
		}
	}
}

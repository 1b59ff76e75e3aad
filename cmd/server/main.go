package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-platform/internal/auth"
	"quiz-platform/internal/config"
	"quiz-platform/internal/contact"
	"quiz-platform/internal/jobs"
	"quiz-platform/internal/mailer"
	"quiz-platform/internal/quiz"
	"quiz-platform/internal/server"
	"quiz-platform/pkg/cache"
	"quiz-platform/pkg/database"
	"quiz-platform/pkg/websocket"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Initialize database
	db, err := database.NewPostgresDB(&database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	// Initialize Redis cache
	redisCache := cache.NewRedisCache(cfg.RedisAddr)
	defer redisCache.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisCache.Ping(pingCtx); err != nil {
		log.Printf("Warning: redis unavailable at %s: %v", cfg.RedisAddr, err)
	}
	cancelPing()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	mail := mailer.NewAsync(newSender(cfg))

	// Initialize repositories and services
	authRepo := auth.NewRepository(db)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	resetTokens := auth.NewResetTokens(cfg.ResetSecret, cfg.ResetTokenTTL)
	authService := auth.NewService(authRepo, tokens, resetTokens, mail, cfg.ResetURLBase)
	quizService := quiz.NewService(quiz.NewRepository(db), redisCache, wsHub, mail)
	contactService := contact.NewService(contact.NewRepository(db))

	scheduler, err := jobs.NewScheduler(cfg.LeaderboardRefreshCron, quizService)
	if err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}
	scheduler.Start()

	handler := server.NewRouter(server.Deps{
		Auth:        auth.NewHandler(authService),
		Quiz:        quiz.NewHandler(quizService),
		Contact:     contact.NewHandler(contactService),
		Hub:         wsHub,
		Tokens:      tokens,
		Users:       authRepo,
		CORSOrigins: cfg.CORSOrigins,
		Checks: map[string]server.HealthCheck{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": redisCache.Ping,
		},
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown gracefully")
}

func newSender(cfg *config.Config) mailer.Sender {
	if cfg.BrevoAPIKey == "" || cfg.EmailSender == "" {
		log.Println("BREVO_API_KEY or EMAIL_SENDER not set, emails will be logged only")
		return mailer.LogSender{}
	}
	return mailer.NewBrevoSender(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName)
}

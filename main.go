package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/isdelr/accounts-be/internal/api"
	"github.com/isdelr/accounts-be/internal/api/handlers"
	"github.com/isdelr/accounts-be/internal/auth"
	"github.com/isdelr/accounts-be/internal/cache"
	"github.com/isdelr/accounts-be/internal/config"
	"github.com/isdelr/accounts-be/internal/database"
	"github.com/isdelr/accounts-be/internal/i18n"
	"github.com/isdelr/accounts-be/internal/logger"
	"github.com/isdelr/accounts-be/internal/mail"
	"github.com/isdelr/accounts-be/internal/monitoring"
	"github.com/isdelr/accounts-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up collaborators
	messages, err := i18n.New()
	if err != nil {
		log.Fatalf("Failed to load message bundles: %v", err)
	}

	mailer, err := mail.New(mail.Options{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		From:        cfg.MailFrom,
		FrontendURL: cfg.FrontendURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}

	userCache := cache.NewUserCache(cfg.UserCacheTTL)
	tokenUtil := auth.NewTokenUtil(cfg.JWTSecret, cfg.JWTTTL)

	googleOAuth := &oauth2.Config{
		ClientID:    cfg.GoogleClientID,
		RedirectURL: cfg.GoogleRedirectURL,
		Scopes:      []string{"openid", "email", "profile"},
		Endpoint:    google.Endpoint,
	}

	// Set up services
	userService := services.NewUserService(db, mailer, cfg.VerificationTokenTTL, cfg.ResetTokenTTL)
	authManager := services.NewAuthManager(userService, userCache)

	// Set up and run the background token janitor
	janitor := monitoring.NewTokenJanitor(userService, "@hourly")
	if err := janitor.Run(); err != nil {
		log.Fatalf("Failed to start token janitor: %v", err)
	}

	// Set up router
	authHandler := handlers.NewAuthHandler(authManager, userService, tokenUtil, userCache, messages, googleOAuth)
	healthHandler := handlers.NewHealthHandler()
	router := api.NewRouter(authHandler, healthHandler, tokenUtil)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	janitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/isdelr/accounts-be/internal/api/handlers"
	"github.com/isdelr/accounts-be/internal/auth"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(authHandler *handlers.AuthHandler, healthHandler *handlers.HealthHandler, tokens *auth.TokenUtil) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signin/local", authHandler.SignInLocal)
		r.Get("/signin/google", authHandler.SignInGoogle)
		r.Post("/signup", authHandler.SignUp)
		r.Put("/verify-email", authHandler.VerifyEmail)
		r.Post("/send-password-reset-email", authHandler.SendPasswordResetEmail)
		r.Put("/password-reset", authHandler.ResetPassword)

		// Routes below require a valid token
		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware())
			r.Get("/me", authHandler.GetMe)
			r.Put("/password-update", authHandler.UpdatePassword)
		})
	})

	return r
}

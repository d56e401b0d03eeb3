package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/spendtrack/spendtrack-go/internal/middleware"
	"github.com/spendtrack/spendtrack-go/internal/service"
)

// RouterConfig holds what NewRouter wires together.
type RouterConfig struct {
	Auth           *service.AuthService
	Expenses       *service.ExpenseService
	Tokens         middleware.TokenVerifier
	AllowedOrigins []string
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth)
	expenseHandler := NewExpenseHandler(cfg.Expenses)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", Health)

	r.Post("/auth/register", authHandler.HandleRegister)
	r.Post("/auth/login", authHandler.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Tokens))

		r.Get("/auth/me", authHandler.HandleMe)

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", expenseHandler.HandleList)
			r.Post("/", expenseHandler.HandleCreate)
			r.Get("/summary", expenseHandler.HandleSummary)
			r.Delete("/bulk", expenseHandler.HandleBulkDelete)
			r.Delete("/{id}", expenseHandler.HandleDelete)
		})
	})

	return r
}

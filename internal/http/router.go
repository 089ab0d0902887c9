package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/simple-crm-core/internal/config"
	"github.com/tendant/simple-crm-core/internal/http/features/activities"
	"github.com/tendant/simple-crm-core/internal/http/features/companies"
	"github.com/tendant/simple-crm-core/internal/http/features/contacts"
	"github.com/tendant/simple-crm-core/internal/http/features/deals"
	"github.com/tendant/simple-crm-core/internal/http/middleware"
	"github.com/tendant/simple-crm-core/internal/httputil"
	"github.com/tendant/simple-crm-core/pkg/repository"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger             *slog.Logger
	Auth               middleware.AuthConfig
	ContactsRepo       *repository.ContactsRepository
	CompaniesRepo      *repository.CompaniesRepository
	DealsRepo          *repository.DealsRepository
	ActivitiesRepo     *repository.ActivitiesRepository
	RateLimitConfig    config.RateLimitConfig
	MaxRequestBodySize int64
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Create rate limiters for different endpoint types
	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	contactsHandler := contacts.NewHandler(cfg.Logger, cfg.ContactsRepo)
	companiesHandler := companies.NewHandler(cfg.Logger, cfg.CompaniesRepo)
	dealsHandler := deals.NewHandler(cfg.Logger, cfg.DealsRepo)
	activitiesHandler := activities.NewHandler(cfg.Logger, cfg.ActivitiesRepo)

	// Everything below is tenant-scoped and sits behind auth.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth))
		r.Use(rateLimiters["read"])
		r.Get("/v1/contacts", contactsHandler.List)
		r.Get("/v1/contacts/{contactID}", contactsHandler.Get)
		r.Get("/v1/companies", companiesHandler.List)
		r.Get("/v1/companies/{companyID}", companiesHandler.Get)
		r.Get("/v1/deals", dealsHandler.List)
		r.Get("/v1/deals/{dealID}", dealsHandler.Get)
		r.Get("/v1/activities", activitiesHandler.List)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth))
		r.Use(rateLimiters["write"])
		r.Post("/v1/contacts", contactsHandler.Create)
		r.Patch("/v1/contacts/{contactID}", contactsHandler.Update)
		r.Delete("/v1/contacts/{contactID}", contactsHandler.Delete)
		r.Post("/v1/companies", companiesHandler.Create)
		r.Patch("/v1/companies/{companyID}", companiesHandler.Update)
		r.Delete("/v1/companies/{companyID}", companiesHandler.Delete)
		r.Post("/v1/deals", dealsHandler.Create)
		r.Patch("/v1/deals/{dealID}", dealsHandler.Update)
		r.Post("/v1/deals/{dealID}/stage", dealsHandler.Stage)
		r.Delete("/v1/deals/{dealID}", dealsHandler.Delete)
		r.Post("/v1/activities", activitiesHandler.Create)
	})

	return r
}

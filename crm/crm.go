// Package crm provides a minimal multi-tenant CRM core as an embeddable
// library: contacts, companies, deals and an activity timeline, all
// scoped to the caller's tenant.
//
// Setup:
//
//  1. Run migrations from migrations/ folder using your preferred tool
//  2. Create a CRM instance and mount routes
//
// Basic usage:
//
//	db, _ := sql.Open("postgres", "postgres://localhost/myapp?sslmode=disable")
//
//	core, err := crm.New(crm.Config{
//	    DB:         db,
//	    AuthSecret: "secret-shared-with-your-identity-provider",
//	})
//	if err != nil {
//	    log.Fatal(err) // Will fail if migrations haven't been run
//	}
//
//	r := chi.NewRouter()
//	r.Mount("/crm", core.Router())
//	http.ListenAndServe(":8080", r)
//
// Authentication is delegated to an external identity provider: requests
// carry a bearer token whose signature this library verifies, and whose
// "tid" claim names the tenant every operation is scoped to.
package crm

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/simple-crm-core/internal/config"
	crmhttp "github.com/tendant/simple-crm-core/internal/http"
	"github.com/tendant/simple-crm-core/internal/http/middleware"
	"github.com/tendant/simple-crm-core/pkg/ident"
	"github.com/tendant/simple-crm-core/pkg/repository"
)

// Config holds the configuration for the CRM library.
type Config struct {
	// DB is the database connection (required).
	DB *sql.DB

	// AuthSecret is the HMAC key shared with the external identity
	// provider, used to verify bearer tokens (required, min 32 chars).
	AuthSecret string

	// AuthIssuer, when set, must match the iss claim of incoming tokens.
	AuthIssuer string

	// IDEncoding is how identifiers are stored in the database
	// (default: binary). Must match the column types the migrations
	// created.
	IDEncoding ident.Encoding

	// RateLimit configures IP rate limiting (default: disabled).
	RateLimit config.RateLimitConfig

	// MaxRequestBodySize caps request bodies in bytes (default: 1 MiB).
	MaxRequestBodySize int64

	// Logger is the structured logger (default: slog JSON to stdout).
	Logger *slog.Logger
}

// CRM is the main instance. It owns the repositories and the identifier
// generator, and hands out a router for the HTTP surface.
type CRM struct {
	config         Config
	db             *sql.DB
	gen            *ident.Generator
	tenantsRepo    *repository.TenantsRepository
	contactsRepo   *repository.ContactsRepository
	companiesRepo  *repository.CompaniesRepository
	dealsRepo      *repository.DealsRepository
	activitiesRepo *repository.ActivitiesRepository
}

// New creates a new CRM instance with the given configuration.
// Returns an error if required database tables don't exist.
// Run migrations first - see migrations/ folder for SQL files.
func New(cfg Config) (*CRM, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	// Validate schema exists
	if err := validateSchema(cfg.DB); err != nil {
		return nil, err
	}

	ids := ident.NewCodec(cfg.IDEncoding)
	gen := ident.NewGenerator(nil)

	return &CRM{
		config:         cfg,
		db:             cfg.DB,
		gen:            gen,
		tenantsRepo:    repository.NewTenantsRepository(cfg.DB, ids, gen),
		contactsRepo:   repository.NewContactsRepository(cfg.DB, ids, gen),
		companiesRepo:  repository.NewCompaniesRepository(cfg.DB, ids, gen),
		dealsRepo:      repository.NewDealsRepository(cfg.DB, ids, gen),
		activitiesRepo: repository.NewActivitiesRepository(cfg.DB, ids, gen),
	}, nil
}

// Router returns an http.Handler with all CRM routes.
// Mount this on your main router:
//
//	r := chi.NewRouter()
//	r.Mount("/crm", core.Router())
//
// Routes (all behind bearer auth):
//
//	POST   /v1/contacts                - Create contact
//	GET    /v1/contacts                - List contacts
//	GET    /v1/contacts/{id}           - Get contact
//	PATCH  /v1/contacts/{id}           - Update contact
//	DELETE /v1/contacts/{id}           - Soft delete contact
//	POST   /v1/companies               - Create company
//	GET    /v1/companies               - List companies
//	GET    /v1/companies/{id}          - Get company
//	PATCH  /v1/companies/{id}          - Update company
//	DELETE /v1/companies/{id}          - Soft delete company
//	POST   /v1/deals                   - Create deal
//	GET    /v1/deals                   - List deals
//	GET    /v1/deals/{id}              - Get deal
//	PATCH  /v1/deals/{id}              - Update deal
//	POST   /v1/deals/{id}/stage        - Advance deal stage
//	DELETE /v1/deals/{id}              - Soft delete deal
//	POST   /v1/activities              - Log activity
//	GET    /v1/activities              - List timeline (keyset paginated)
func (c *CRM) Router() http.Handler {
	return crmhttp.NewRouter(crmhttp.RouterConfig{
		Logger: c.config.Logger,
		Auth: middleware.AuthConfig{
			Secret: []byte(c.config.AuthSecret),
			Issuer: c.config.AuthIssuer,
		},
		ContactsRepo:       c.contactsRepo,
		CompaniesRepo:      c.companiesRepo,
		DealsRepo:          c.dealsRepo,
		ActivitiesRepo:     c.activitiesRepo,
		RateLimitConfig:    c.config.RateLimit,
		MaxRequestBodySize: c.config.MaxRequestBodySize,
	})
}

// AuthMiddleware returns middleware that validates bearer tokens.
// Use this to protect your own routes alongside the CRM's:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(core.AuthMiddleware())
//	    r.Get("/protected", handler)
//	})
func (c *CRM) AuthMiddleware() func(http.Handler) http.Handler {
	return middleware.Auth(middleware.AuthConfig{
		Secret: []byte(c.config.AuthSecret),
		Issuer: c.config.AuthIssuer,
	})
}

// Tenants returns the tenants repository for provisioning. Tenant
// lifecycle is an operator concern, so it has no HTTP surface here.
func (c *CRM) Tenants() *repository.TenantsRepository {
	return c.tenantsRepo
}

// Generator returns the identifier generator for advanced usage.
func (c *CRM) Generator() *ident.Generator {
	return c.gen
}

// Routes registers all CRM routes on an http.ServeMux with the given
// prefix, for callers on the standard library mux:
//
//	mux := http.NewServeMux()
//	core.Routes(mux, "/api/crm")
func (c *CRM) Routes(mux *http.ServeMux, prefix string) {
	mux.Handle(prefix+"/", http.StripPrefix(prefix, c.Router()))
}

// Mount attaches all CRM routes to an existing chi router.
func (c *CRM) Mount(r chi.Router, prefix string) {
	r.Mount(prefix, c.Router())
}

func validateConfig(cfg *Config) error {
	if cfg.DB == nil {
		return errors.New("crm: DB is required")
	}
	if cfg.AuthSecret == "" {
		return errors.New("crm: AuthSecret is required")
	}
	if len(cfg.AuthSecret) < 32 {
		return errors.New("crm: AuthSecret must be at least 32 characters")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.MaxRequestBodySize == 0 {
		cfg.MaxRequestBodySize = 1 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
}

// validateSchema checks that required database tables exist.
func validateSchema(db *sql.DB) error {
	requiredTables := []string{"tenants", "contacts", "companies", "deals", "activities"}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	`

	for _, table := range requiredTables {
		var name string
		err := db.QueryRow(query, table).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("crm: missing table '%s' - run migrations first (see migrations/ folder)", table)
		}
		if err != nil {
			return fmt.Errorf("crm: failed to check schema: %w", err)
		}
	}

	return nil
}

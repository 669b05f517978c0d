package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"cmcs/internal/domain/audit"
	"cmcs/internal/domain/auth"
	"cmcs/internal/domain/claims"
	"cmcs/internal/domain/notifications"
	"cmcs/internal/domain/reports"
	"cmcs/internal/domain/users"
	"cmcs/internal/platform/config"
	"cmcs/internal/platform/db"
	"cmcs/internal/platform/email"
	"cmcs/internal/platform/metrics"
	"cmcs/internal/platform/storage"
	"cmcs/internal/transport/http/api"
	audithandler "cmcs/internal/transport/http/handlers/audit"
	authhandler "cmcs/internal/transport/http/handlers/auth"
	claimshandler "cmcs/internal/transport/http/handlers/claims"
	notificationshandler "cmcs/internal/transport/http/handlers/notifications"
	reportshandler "cmcs/internal/transport/http/handlers/reports"
	usershandler "cmcs/internal/transport/http/handlers/users"
	"cmcs/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New wires the whole service: database, migrations, seed data, domain
// services, and the HTTP router. Callers own the returned App and must
// Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	files, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	usersStore := users.NewStore(pool)
	claimsSvc := claims.NewService(claims.NewStore(pool), usersStore, files)
	authSvc := auth.NewService(pool, cfg.JWTSecret)
	auditSvc := audit.New(pool)
	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom, cfg.EmailEnabled)
	reportsSvc := reports.NewService(reports.NewStore(pool))
	idempotency := middleware.NewIdempotencyStore(pool)

	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireRole(auth.RoleHR)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authSvc, auditSvc).RegisterRoutes(r)
		claimshandler.NewHandler(claimsSvc, notifySvc, auditSvc, idempotency, claimshandler.UploadLimits{
			MaxDocuments:     cfg.MaxDocumentsPerUpload,
			MaxDocumentBytes: cfg.MaxDocumentBytes,
		}).RegisterRoutes(r)
		usershandler.NewHandler(usersStore, auditSvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Metrics: collector,
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	cfg := config.Load()

	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("claim service listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

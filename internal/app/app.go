// Package app wires configuration, storage, services and the HTTP router
// into one explicitly constructed application.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/audit"
	auditPostgres "github.com/frahmantamala/shiftboard/internal/audit/postgres"
	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/credential"
	"github.com/frahmantamala/shiftboard/internal/metrics"
	"github.com/frahmantamala/shiftboard/internal/person"
	personPostgres "github.com/frahmantamala/shiftboard/internal/person/postgres"
	"github.com/frahmantamala/shiftboard/internal/session"
	sessionPostgres "github.com/frahmantamala/shiftboard/internal/session/postgres"
	"github.com/frahmantamala/shiftboard/internal/shift"
	shiftPostgres "github.com/frahmantamala/shiftboard/internal/shift/postgres"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/transport/rest"
	"github.com/frahmantamala/shiftboard/internal/user"
	userPostgres "github.com/frahmantamala/shiftboard/internal/user/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type options struct {
	now      func() time.Time
	registry *prometheus.Registry
}

type Option func(*options)

// WithClock replaces the clock used for session expiry, audit timestamps and
// the shift listing window.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

type App struct {
	Config   *internal.Config
	DB       *gorm.DB
	Reader   *sqlx.DB
	Bus      *events.EventBus
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Sessions *session.Manager
	Auth     *auth.Service
	Users    *user.Service
	People   *person.Service
	Shifts   *shift.Service
	Audit    *audit.Service
	Router   *chi.Mux
	Logger   *slog.Logger
}

// New builds every service on top of an open, migrated db.
func New(cfg *internal.Config, db *gorm.DB, logger *slog.Logger, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = metrics.NewRegistry()
	}

	reader, err := store.Reader(db)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	m := metrics.New(o.registry)
	bus := events.NewEventBus(logger)
	m.Subscribe(bus)
	bus.Subscribe(events.EventTypeAuditRecorded, audit.LogSubscriber(logger))

	tx := store.NewTxManager(db)
	codec := credential.NewCodec(cfg.Security.HashIterations, cfg.Security.SaltBytes)

	userRepo := userPostgres.NewUserRepository(db)
	auditRepo := auditPostgres.NewAuditRepository(db, reader)
	recorder := audit.NewRecorder(auditRepo, bus, logger).WithClock(o.now)

	sessions := session.NewManager(sessionPostgres.NewSessionRepository(db), userRepo, cfg.Security, logger).
		WithClock(o.now).
		WithPublisher(bus).
		WithMetrics(m)

	authSvc := auth.NewService(userRepo, sessions, codec, recorder, tx, logger).WithMetrics(m)
	userSvc := user.NewService(userRepo, sessions, codec, recorder, tx, logger)
	personSvc := person.NewService(personPostgres.NewPersonRepository(db), logger)
	shiftSvc := shift.NewService(shiftPostgres.NewShiftRepository(db, reader), userRepo, recorder, tx, logger).
		WithClock(o.now)
	auditSvc := audit.NewService(auditRepo, cfg.Audit, logger)

	router := chi.NewRouter()
	deps := rest.Dependencies{
		DB:             sqlDB,
		Driver:         cfg.Database.Driver,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthHandler:    auth.NewHandler(authSvc),
		UserHandler:    user.NewHandler(userSvc),
		PersonHandler:  person.NewHandler(personSvc),
		ShiftHandler:   shift.NewHandler(shiftSvc),
		AuditHandler:   audit.NewHandler(auditSvc),
		Logger:         logger,
	}
	if cfg.Observability.Metrics.Enabled {
		deps.Metrics = m
		deps.Gatherer = o.registry
		deps.MetricsPath = cfg.Observability.Metrics.Path
	}
	rest.RegisterAllRoutes(router, deps)

	return &App{
		Config:   cfg,
		DB:       db,
		Reader:   reader,
		Bus:      bus,
		Registry: o.registry,
		Metrics:  m,
		Sessions: sessions,
		Auth:     authSvc,
		Users:    userSvc,
		People:   personSvc,
		Shifts:   shiftSvc,
		Audit:    auditSvc,
		Router:   router,
		Logger:   logger,
	}, nil
}

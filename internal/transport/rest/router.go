package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/audit"
	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/frahmantamala/shiftboard/internal/metrics"
	"github.com/frahmantamala/shiftboard/internal/person"
	"github.com/frahmantamala/shiftboard/internal/shift"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/internal/transport/middleware"
	"github.com/frahmantamala/shiftboard/internal/transport/swagger"
	"github.com/frahmantamala/shiftboard/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	errRouteNotFound    = internal.NewNotFoundError("not found", internal.ErrCodeRouteNotFound)
	errMethodNotAllowed = &internal.AppError{
		Type:       internal.ErrorTypeValidation,
		Code:       internal.ErrCodeMethodNotAllowed,
		Message:    "method not allowed",
		StatusCode: http.StatusMethodNotAllowed,
	}
)

// Dependencies carries everything the router mounts. Metrics and Gatherer
// are optional.
type Dependencies struct {
	DB             *sql.DB
	Driver         string
	AllowedOrigins string
	MetricsPath    string
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer

	AuthHandler   *auth.Handler
	UserHandler   *user.Handler
	PersonHandler *person.Handler
	ShiftHandler  *shift.Handler
	AuditHandler  *audit.Handler

	Logger *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	healthHandler := NewHealthHandler(deps.DB, deps.Driver)
	base := transport.NewBaseHandler(deps.Logger)

	// Apply global middleware
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.TraceID(deps.Logger))
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	router.Use(middleware.RequestContext)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		base.HandleServiceError(w, r, errRouteNotFound)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		base.HandleServiceError(w, r, errMethodNotAllowed)
	})

	router.Get(swagger.SpecPath, swagger.SpecHandler())
	router.Handle("/swagger/*", swagger.Handler())

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	if deps.Gatherer != nil && deps.MetricsPath != "" {
		router.Handle(deps.MetricsPath, metrics.Handler(deps.Gatherer))
	}

	// Public auth routes
	router.Post("/auth/bootstrap", deps.AuthHandler.Bootstrap)
	router.Post("/auth/login", deps.AuthHandler.Login)

	// Protected routes that require a session
	router.Group(func(pr chi.Router) {
		pr.Use(deps.AuthHandler.Authenticate)

		pr.Post("/auth/logout", deps.AuthHandler.Logout)
		pr.Post("/auth/change-password", deps.AuthHandler.ChangePassword)

		pr.Get("/people", deps.PersonHandler.ListPeople)

		pr.Route("/shifts", func(sr chi.Router) {
			sr.Get("/", deps.ShiftHandler.ListShifts)
			sr.Post("/", deps.ShiftHandler.CreateShift)
			sr.Put("/{id}", deps.ShiftHandler.UpdateShift)
			sr.Delete("/{id}", deps.ShiftHandler.DeleteShift)
		})

		// Admin only
		pr.Group(func(ar chi.Router) {
			ar.Use(middleware.RequireAdmin)

			ar.Route("/users", func(ur chi.Router) {
				ur.Get("/", deps.UserHandler.ListUsers)
				ur.Post("/", deps.UserHandler.CreateUser)
				ur.Put("/{id}", deps.UserHandler.UpdateUser)
				ur.Delete("/{id}", deps.UserHandler.DeleteUser)
				ur.Post("/{id}/reset-password", deps.UserHandler.ResetPassword)
			})

			ar.Get("/audit-logs", deps.AuditHandler.ListLogs)
		})
	})
}

package rest

import (
	"net/http"

	"pillbox-backend/application/ports"
	"pillbox-backend/application/services"
	"pillbox-backend/interfaces/http/rest/handlers"
	"pillbox-backend/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	records       ports.TakenRecordRepository
	notifications *services.NotificationService
	enableCORS    bool
	logger        *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	records ports.TakenRecordRepository,
	notifications *services.NotificationService,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		records:       records,
		notifications: notifications,
		enableCORS:    enableCORS,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	// CORS configuration: the PWA origin calls these routes directly
	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"http://localhost:3000", "https://*.vercel.app"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		checkHandler := handlers.NewCheckHandler(rt.records, rt.logger)
		r.Post("/medicine-check", checkHandler.SetCheck)
		r.Get("/medicine-check", checkHandler.ListChecks)

		notificationHandler := handlers.NewNotificationHandler(rt.notifications, rt.logger)
		r.Post("/schedule-notification", notificationHandler.Handle)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

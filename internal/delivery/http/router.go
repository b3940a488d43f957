package http

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"explorewithme/internal/delivery/http/controllers"
	"explorewithme/internal/delivery/http/middleware"
	"explorewithme/internal/domain"
)

// RouterDeps holds what NewRouter needs to build the handler tree.
type RouterDeps struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	Events         *controllers.EventController
	Admin          *controllers.AdminController
	Requests       *controllers.RequestController
	AllowedOrigins []string
	Health         func(r *http.Request) error
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(d.Verifier, d.Logger)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	admin := func(h http.HandlerFunc) http.HandlerFunc { return auth(adminOnly(h)) }

	// Initiator
	mux.HandleFunc("POST /users/me/events", auth(d.Events.CreateEvent))
	mux.HandleFunc("GET /users/me/events", auth(d.Events.ListMyEvents))
	mux.HandleFunc("GET /users/me/events/{eventID}", auth(d.Events.GetMyEvent))
	mux.HandleFunc("PATCH /users/me/events/{eventID}", auth(d.Events.UpdateMyEvent))
	mux.HandleFunc("GET /users/me/events/{eventID}/requests", auth(d.Requests.ListEventRequests))
	mux.HandleFunc("PATCH /users/me/events/{eventID}/requests", auth(d.Requests.ResolveEventRequests))

	// Requester
	mux.HandleFunc("POST /users/me/requests", auth(d.Requests.CreateRequest))
	mux.HandleFunc("GET /users/me/requests", auth(d.Requests.ListMyRequests))
	mux.HandleFunc("PATCH /users/me/requests/{requestID}/cancel", auth(d.Requests.CancelMyRequest))

	// Admin
	mux.HandleFunc("GET /admin/events", admin(d.Admin.SearchEvents))
	mux.HandleFunc("PATCH /admin/events/{eventID}", admin(d.Admin.UpdateEvent))
	mux.HandleFunc("POST /admin/events/{eventID}/publish", admin(d.Admin.PublishEvent))
	mux.HandleFunc("POST /admin/events/{eventID}/reject", admin(d.Admin.RejectEvent))

	// Public
	mux.HandleFunc("GET /events/{eventID}", d.Events.GetPublishedEvent)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(r); err != nil {
				d.Logger.WarnContext(r.Context(), "health check failed", "err", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.CORS(d.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(d.Logger, handler)
	handler = chimw.Recoverer(handler)
	handler = chimw.RealIP(handler)
	handler = chimw.RequestID(handler)
	return handler
}

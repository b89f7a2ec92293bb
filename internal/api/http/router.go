package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"library-rental-backend/internal/metrics"
	"library-rental-backend/internal/security"
	"library-rental-backend/internal/service"
)

// Dependencies is everything the router needs. Limiter and Metrics may be nil.
type Dependencies struct {
	Tokens        security.TokenManager
	Books         service.BookService
	Borrowings    service.BorrowingService
	Users         service.UserService
	Notifications service.NotificationService
	Limiter       *RateLimiter
	Metrics       metrics.MetricsCollector
}

// NewRouter builds the API. Route templates must match the keys in config.EndpointSecurityConfig.
func NewRouter(deps Dependencies) *mux.Router {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	r.Use(RecoveryMiddleware, LoggingMiddleware, MetricsMiddleware(deps.Metrics), AuthMiddleware(deps.Tokens))
	if deps.Limiter != nil {
		r.Use(deps.Limiter.Middleware)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	books := NewBookHandler(deps.Books)
	api.HandleFunc("/books", books.List).Methods(http.MethodGet)
	api.HandleFunc("/books", books.Create).Methods(http.MethodPost)
	api.HandleFunc("/books/{id}", books.Get).Methods(http.MethodGet)
	api.HandleFunc("/books/{id}", books.Update).Methods(http.MethodPut)
	api.HandleFunc("/books/{id}", books.Delete).Methods(http.MethodDelete)

	borrowings := NewBorrowingHandler(deps.Borrowings)
	api.HandleFunc("/borrowings", borrowings.List).Methods(http.MethodGet)
	api.HandleFunc("/borrowings", borrowings.Create).Methods(http.MethodPost)
	api.HandleFunc("/borrowings/{id}", borrowings.Get).Methods(http.MethodGet)
	api.HandleFunc("/borrowings/{id}/return", borrowings.Return).Methods(http.MethodPost)

	users := NewUserHandler(deps.Users)
	api.HandleFunc("/users/me", users.GetMe).Methods(http.MethodGet)
	api.HandleFunc("/users/me", users.UpdateMe).Methods(http.MethodPatch)

	notifications := NewNotificationHandler(deps.Notifications)
	api.HandleFunc("/notifications", notifications.List).Methods(http.MethodGet)

	return r
}

package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"congregationhub/internal/delivery/http/controllers"
	"congregationhub/internal/delivery/http/middleware"
	"congregationhub/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Staff routes require the admin or pastor role; member check-in requires any
// authenticated user; guest check-in and the active-session lookup are public.
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	checkInController *controllers.CheckInController,
	rosterController *controllers.RosterController,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier)
	staff := func(h http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(domain.RoleAdmin, domain.RolePastor)(h))
	}

	// Auth
	mux.HandleFunc("POST /api/auth/signup", authController.SignUp)
	mux.HandleFunc("POST /api/auth/login", authController.Login)

	// Events (staff except read)
	mux.HandleFunc("POST /api/events", staff(eventController.CreateEvent))
	mux.HandleFunc("GET /api/events", auth(eventController.ListEvents))
	mux.HandleFunc("GET /api/events/{eventID}", auth(eventController.GetEvent))
	mux.HandleFunc("PATCH /api/events/{eventID}", staff(eventController.UpdateEvent))
	mux.HandleFunc("POST /api/events/{eventID}/cancel", staff(eventController.CancelEvent))

	// Check-in sessions (staff)
	mux.HandleFunc("POST /api/events/{eventID}/session/start", staff(eventController.StartSession))
	mux.HandleFunc("POST /api/events/{eventID}/session/stop", staff(eventController.StopSession))

	// Roster (staff)
	mux.HandleFunc("GET /api/events/{eventID}/roster", staff(rosterController.GetRoster))
	mux.HandleFunc("GET /api/events/{eventID}/roster.csv", staff(rosterController.ExportRosterCSV))

	// Check-in
	mux.HandleFunc("GET /api/checkin/active", checkInController.GetActiveSession)
	mux.HandleFunc("POST /api/checkin", auth(checkInController.CheckInMember))
	mux.HandleFunc("POST /api/checkin/guest", checkInController.CheckInGuest)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// WithMiddleware wraps the router in the request-scoped middleware chain:
// request ID first, then CORS, then request logging.
func WithMiddleware(mux *http.ServeMux, logger *slog.Logger, corsOrigins []string) http.Handler {
	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.CORS(corsOrigins, handler)
	handler = middleware.RequestID(handler)
	return handler
}

package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router owns the ServeMux and mounts every handler behind the auth
// middleware. Stdlib routing is enough here; the path-switch dispatch
// inside each handler keeps route ownership in one place per resource.
type Router struct {
	mux    *http.ServeMux
	auth   *AuthMiddleware
	logger *zap.Logger
}

// NewRouter creates an empty router.
func NewRouter(auth *AuthMiddleware, logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		auth:   auth,
		logger: logger,
	}
}

// Handler returns the root http.Handler.
func (r *Router) Handler() http.Handler {
	return r.mux
}

// RegisterAuthRoutes mounts registration/login/logout. Register and login
// run without a token; logout needs the session it is about to kill.
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.mux.HandleFunc("/auth/api/v1/register", methodOnly(http.MethodPost, h.Register))
	r.mux.HandleFunc("/auth/api/v1/login", methodOnly(http.MethodPost, h.Login))
	r.mux.HandleFunc("/auth/api/v1/logout", r.auth.Require(methodOnly(http.MethodPost, h.Logout)))
}

// RegisterReservationRoutes mounts the reservation surface plus the
// admin-only company listing and export.
func (r *Router) RegisterReservationRoutes(h *ReservationHandler) {
	r.mux.Handle("/api/v1/reservations", r.auth.Require(h.ServeHTTP))
	r.mux.Handle("/api/v1/reservations/", r.auth.Require(h.ServeHTTP))
	r.mux.HandleFunc("/admin/api/v1/reservations", r.auth.RequireAdmin(methodOnly(http.MethodGet, h.ListCompany)))
	r.mux.HandleFunc("/admin/api/v1/reservations/export", r.auth.RequireAdmin(methodOnly(http.MethodGet, h.Export)))
}

// RegisterWorkspaceRoutes mounts workspace reads for everyone and
// workspace management for admins.
func (r *Router) RegisterWorkspaceRoutes(h *WorkspaceHandler) {
	r.mux.Handle("/api/v1/workspaces", r.auth.Require(h.ServeHTTP))
	r.mux.Handle("/api/v1/workspaces/", r.auth.Require(h.ServeHTTP))
	r.mux.Handle("/admin/api/v1/workspaces", r.auth.RequireAdmin(h.ServeAdmin))
	r.mux.Handle("/admin/api/v1/workspaces/", r.auth.RequireAdmin(h.ServeAdmin))
}

// RegisterNotificationRoutes mounts notification polling and the admin
// broadcast endpoint.
func (r *Router) RegisterNotificationRoutes(h *NotificationHandler) {
	r.mux.Handle("/api/v1/notifications", r.auth.Require(h.ServeHTTP))
	r.mux.Handle("/api/v1/notifications/", r.auth.Require(h.ServeHTTP))
	r.mux.HandleFunc("/admin/api/v1/notifications/broadcast", r.auth.RequireAdmin(methodOnly(http.MethodPost, h.Broadcast)))
}

// RegisterHealthRoutes mounts the unauthenticated liveness probe.
func (r *Router) RegisterHealthRoutes() {
	r.mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
	})
}

func methodOnly(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

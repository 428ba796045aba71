// Package httpapi is the HTTP surface of the service. Routing is a flat
// table over http.ServeMux; every protected route declares its required
// group set once, at registration, and the access guard is the single
// place authorization decisions happen.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"roomtime.org/internal/auth"
	"roomtime.org/internal/model"
	"roomtime.org/internal/obs"
	"roomtime.org/internal/scheduling"
	"roomtime.org/internal/store/jsonfile"
)

// API is the HTTP layer.
type API struct {
	mux     *http.ServeMux
	db      *jsonfile.DB
	authn   *auth.Authenticator
	guard   *auth.Guard
	sched   *scheduling.Service
	log     *logrus.Logger
	version string
}

// New builds the route table. Group sets are declared here and nowhere
// else; handlers receive the already-authorized actor.
func New(db *jsonfile.DB, authn *auth.Authenticator, guard *auth.Guard, sched *scheduling.Service, log *logrus.Logger, version string) *API {
	a := &API{
		mux:     http.NewServeMux(),
		db:      db,
		authn:   authn,
		guard:   guard,
		sched:   sched,
		log:     log,
		version: version,
	}

	adminOnly := []model.Group{model.GroupAdmin}
	roomManagers := []model.Group{model.GroupAdmin, model.GroupManager}
	timeRegistrants := []model.Group{model.GroupAdmin, model.GroupManager, model.GroupPersonnel}
	anyUser := []model.Group{}

	// public
	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.HandleFunc("/readyz", a.handleReady)
	a.mux.Handle("/metrics", obs.Handler())
	a.mux.HandleFunc("/token", a.handleToken)
	a.mux.HandleFunc("/hash", a.handleHash)

	// users
	a.mux.Handle("/users/me", a.protected(anyUser, a.handleUsersMe))
	a.mux.Handle("/users/create", a.protected(adminOnly, a.handleUsersCreate))
	a.mux.Handle("/users/list", a.protected(adminOnly, a.handleUsersList))
	a.mux.Handle("/users/update", a.protected(adminOnly, a.handleUsersUpdate))
	a.mux.Handle("/users/delete", a.protected(adminOnly, a.handleUsersDelete))

	// universities
	a.mux.Handle("/universities/create", a.protected(adminOnly, a.handleUniversitiesCreate))
	a.mux.Handle("/universities/list", a.protected(adminOnly, a.handleUniversitiesList))
	a.mux.Handle("/universities/update", a.protected(adminOnly, a.handleUniversitiesUpdate))
	a.mux.Handle("/universities/delete", a.protected(adminOnly, a.handleUniversitiesDelete))

	// rooms
	a.mux.Handle("/rooms/create", a.protected(roomManagers, a.handleRoomsCreate))
	a.mux.Handle("/rooms/list", a.protected(anyUser, a.handleRoomsList))
	a.mux.Handle("/rooms/update", a.protected(roomManagers, a.handleRoomsUpdate))
	a.mux.Handle("/rooms/delete", a.protected(roomManagers, a.handleRoomsDelete))

	// times
	a.mux.Handle("/times/create", a.protected(timeRegistrants, a.handleTimesCreate))
	a.mux.Handle("/times/list", a.protected(anyUser, a.handleTimesList))
	a.mux.Handle("/times/update", a.protected(timeRegistrants, a.handleTimesUpdate))
	a.mux.Handle("/times/delete", a.protected(timeRegistrants, a.handleTimesDelete))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func Handler(a *API) http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, 20, 10)
	h = SecurityHeaders(h)
	h = obs.Instrument(h)
	h = Logging(h)
	h = RequestID(h)
	return h
}

// protected wraps a handler with the access guard using the declared group
// set. The resolved actor is attached to the context for audit logging and
// passed to the handler for business-rule scoping.
func (a *API) protected(groups []model.Group, fn func(http.ResponseWriter, *http.Request, model.User)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.guard.Authorize(r.Context(), r.Header.Get("Authorization"), groups...)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}
		ctx := auth.ContextWithUser(r.Context(), user)
		fn(w, r.WithContext(ctx), user)
	})
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "roomtime-api",
		"version": a.version,
	})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

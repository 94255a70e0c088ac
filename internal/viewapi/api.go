// Package viewapi serves the session projection to view layers over JSON and
// accepts staff intents (acknowledge, resolve, refresh). It owns no state:
// reads come from the session store's projection and every mutation goes
// through the session service.
package viewapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/wardview/internal/alert"
	"github.com/linnemanlabs/wardview/internal/resident"
	"github.com/linnemanlabs/wardview/internal/vitals"
)

// SessionService defines the session operations the view API needs.
type SessionService interface {
	Residents() []resident.Resident
	Alerts() []alert.Alert
	Refresh(ctx context.Context) error
	Acknowledge(ctx context.Context, alertID string) error
	Resolve(ctx context.Context, alertID, outcome, notes string) error
	VitalsHistory(ctx context.Context, residentID string, hours int) ([]vitals.VitalReading, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger    log.Logger
	svc       SessionService
	connected func() bool
}

// New creates a new API handler. connected reports the push channel state and
// may be nil when no push subscription exists.
func New(logger log.Logger, svc SessionService, connected func() bool) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("session service is required"))
	}
	if connected == nil {
		connected = func() bool { return false }
	}
	return &API{
		logger:    logger,
		svc:       svc,
		connected: connected,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/residents", a.handleResidents)
		r.Get("/residents/{id}/vitals/history", a.handleVitalsHistory)
		r.Get("/alerts", a.handleAlerts)
		r.Post("/alerts/{id}/acknowledge", a.handleAcknowledge)
		r.Post("/alerts/{id}/resolve", a.handleResolve)
		r.Post("/refresh", a.handleRefresh)
		r.Get("/connection", a.handleConnection)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError mirrors the backend's error envelope so view layers handle both
// shapes with one decoder.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

package viewapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/wardview/internal/backend"
	"github.com/linnemanlabs/wardview/internal/session"
)

const defaultHistoryHours = 24

func (a *API) handleResidents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"residents": a.svc.Residents()})
}

func (a *API) handleAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"alerts": a.svc.Alerts()})
}

func (a *API) handleConnection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"connected": a.connected()})
}

func (a *API) handleVitalsHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	hours := defaultHistoryHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "hours must be a positive integer")
			return
		}
		hours = n
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("wardview.resident.id", id))

	readings, err := a.svc.VitalsHistory(r.Context(), id, hours)
	if err != nil {
		a.writeBackendError(w, r, err, "vitals history failed", "resident_id", id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vitals": readings})
}

func (a *API) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("wardview.alert.id", id))

	if err := a.svc.Acknowledge(r.Context(), id); err != nil {
		a.writeBackendError(w, r, err, "acknowledge failed", "alert_id", id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": a.svc.Alerts()})
}

func (a *API) handleResolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Outcome string `json:"outcome"`
		Notes   string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid json body")
		return
	}
	if body.Outcome == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "outcome is required")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("wardview.alert.id", id))

	if err := a.svc.Resolve(r.Context(), id, body.Outcome, body.Notes); err != nil {
		a.writeBackendError(w, r, err, "resolve failed", "alert_id", id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": a.svc.Alerts()})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Refresh(r.Context()); err != nil {
		a.writeBackendError(w, r, err, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"residents": a.svc.Residents(),
		"alerts":    a.svc.Alerts(),
	})
}

// writeBackendError maps session/backend failures onto the view surface:
// unknown alert ids are 404s, timeouts 504s, everything else a 502 carrying
// the classified code verbatim so the view can offer a retry affordance.
func (a *API) writeBackendError(w http.ResponseWriter, r *http.Request, err error, msg string, kv ...any) {
	if errors.Is(err, session.ErrAlertNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "alert not found")
		return
	}

	a.logger.Error(r.Context(), err, msg, kv...)

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		status := http.StatusBadGateway
		if apiErr.Code == backend.CodeTimeout {
			status = http.StatusGatewayTimeout
		}
		writeError(w, status, apiErr.Code, apiErr.Message)
		return
	}

	writeError(w, http.StatusBadGateway, backend.CodeUnknown, "backend request failed")
}

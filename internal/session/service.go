package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/wardview/internal/alert"
	"github.com/linnemanlabs/wardview/internal/backend"
	"github.com/linnemanlabs/wardview/internal/resident"
	"github.com/linnemanlabs/wardview/internal/vitals"
)

// ErrAlertNotFound is returned when a staff action names an alert id that is
// not in the current projection.
var ErrAlertNotFound = errors.New("alert not found")

// Backend is the subset of the ingestion backend the service needs.
type Backend interface {
	Snapshot(ctx context.Context) (*backend.Snapshot, error)
	VitalsHistory(ctx context.Context, residentID string, hours int) ([]vitals.VitalReading, error)
	Acknowledge(ctx context.Context, alertID string) (*alert.Alert, error)
	Resolve(ctx context.Context, alertID, outcome, notes string) (*alert.Alert, error)
}

// Notifier receives alerts that warrant staff escalation.
type Notifier interface {
	Notify(ctx context.Context, al alert.Alert, res *resident.Resident) error
}

// Service is the business boundary for session operations. It serializes all
// mutating operations end to end: a submit-then-reload runs to completion,
// including its backend calls, before the next mutation touches shared state.
type Service struct {
	store    *Store
	backend  Backend
	logger   log.Logger
	metrics  *Metrics
	notifier Notifier

	// opMu serializes mutating operations (refresh, submit, push apply).
	opMu sync.Mutex
}

// NewService creates a session service. Metrics and notifier may be nil.
func NewService(store *Store, b Backend, logger log.Logger, m *Metrics, n Notifier) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:    store,
		backend:  b,
		logger:   logger,
		metrics:  m,
		notifier: n,
	}
}

// Store exposes the underlying store for read access.
func (s *Service) Store() *Store { return s.store }

// Residents returns the current resident projection.
func (s *Service) Residents() []resident.Resident { return s.store.Residents() }

// Alerts returns the current alert projection.
func (s *Service) Alerts() []alert.Alert { return s.store.Alerts() }

// Refresh loads a fresh snapshot and replaces the projection. On failure the
// existing projection is left intact and the classified error is returned to
// the caller; the service never retries on its own.
func (s *Service) Refresh(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.reload(ctx)
}

// Acknowledge submits an acknowledge action for the alert and re-derives
// authoritative state from a full snapshot reload. Acknowledging an alert
// that is already acknowledged or terminal is a no-op success.
func (s *Service) Acknowledge(ctx context.Context, alertID string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	al, ok := s.store.Alert(alertID)
	if !ok {
		return ErrAlertNotFound
	}
	if !al.Status.CanAcknowledge() {
		s.logger.Info(ctx, "acknowledge is a no-op", "alert_id", alertID, "status", al.Status)
		return nil
	}

	if _, err := s.backend.Acknowledge(ctx, alertID); err != nil {
		s.countSubmit("acknowledge", "error")
		return err
	}
	s.countSubmit("acknowledge", "success")

	return s.reload(ctx)
}

// Resolve submits a resolve action with an outcome and optional notes, then
// re-derives authoritative state. Resolving an already-terminal alert is a
// no-op success.
func (s *Service) Resolve(ctx context.Context, alertID, outcome, notes string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	al, ok := s.store.Alert(alertID)
	if !ok {
		return ErrAlertNotFound
	}
	if al.Status.Terminal() {
		s.logger.Info(ctx, "resolve is a no-op", "alert_id", alertID, "status", al.Status)
		return nil
	}

	if _, err := s.backend.Resolve(ctx, alertID, outcome, notes); err != nil {
		s.countSubmit("resolve", "error")
		return err
	}
	s.countSubmit("resolve", "success")

	return s.reload(ctx)
}

// ApplyPush folds one push event into the projection. Push events are applied
// unconditionally in arrival order; a duplicate is a harmless overwrite.
func (s *Service) ApplyPush(ctx context.Context, ev Event) {
	s.opMu.Lock()
	// the channel delivers at least once, so a new-alert may be a redelivery
	// of an alert already in the projection. The fold is a harmless overwrite
	// either way, but escalation must fire once per logical alert.
	firstSeen := false
	if ne, ok := ev.(NewAlertEvent); ok {
		_, known := s.store.Alert(ne.Alert.ID)
		firstSeen = !known
	}
	s.store.Apply(ev)
	s.opMu.Unlock()

	if s.metrics != nil {
		s.metrics.EventsApplied.WithLabelValues(ev.Kind()).Inc()
	}

	if ne, ok := ev.(NewAlertEvent); ok && firstSeen && ne.Alert.Type == alert.TypeCritical && s.notifier != nil {
		// escalation is best effort and must never block the apply path
		go s.escalate(context.WithoutCancel(ctx), ne.Alert)
	}
}

// VitalsHistory fetches historical readings for one resident straight from
// the backend. Read-only, so it bypasses the operation lock.
func (s *Service) VitalsHistory(ctx context.Context, residentID string, hours int) ([]vitals.VitalReading, error) {
	return s.backend.VitalsHistory(ctx, residentID, hours)
}

// reload fetches and applies a full snapshot. Callers must hold opMu.
func (s *Service) reload(ctx context.Context) error {
	start := time.Now()
	snap, err := s.backend.Snapshot(ctx)
	if err != nil {
		s.countReload("error")
		return err
	}
	s.store.Apply(SnapshotEvent{Residents: snap.Residents, Alerts: snap.Alerts})
	s.countReload("success")
	if s.metrics != nil {
		s.metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
		s.metrics.ResidentsTracked.Set(float64(len(snap.Residents)))
	}

	s.logger.Info(ctx, "snapshot applied",
		"residents", len(snap.Residents),
		"alerts", len(snap.Alerts),
		"duration", time.Since(start).Seconds(),
	)
	return nil
}

func (s *Service) escalate(ctx context.Context, al alert.Alert) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var res *resident.Resident
	if r, ok := s.store.Resident(al.ResidentID); ok {
		res = &r
	}
	if err := s.notifier.Notify(ctx, al, res); err != nil {
		s.logger.Warn(ctx, "escalation notify failed", "alert_id", al.ID, "error", err)
	}
}

func (s *Service) countSubmit(action, outcome string) {
	if s.metrics != nil {
		s.metrics.ActionSubmits.WithLabelValues(action, outcome).Inc()
	}
}

func (s *Service) countReload(outcome string) {
	if s.metrics != nil {
		s.metrics.SnapshotReloads.WithLabelValues(outcome).Inc()
	}
}

package session

import (
	"github.com/linnemanlabs/wardview/internal/alert"
	"github.com/linnemanlabs/wardview/internal/resident"
	"github.com/linnemanlabs/wardview/internal/vitals"
)

// Event is one mutation folded into the projection. The variants are sealed:
// every state change in the session core flows through exactly one of them,
// which keeps the transition function pure and independent of transport.
type Event interface {
	// Kind is a stable label for logs and metrics.
	Kind() string
}

// SnapshotEvent replaces both collections wholesale from an authoritative
// backend load. Residents and alerts become visible together, never one
// without the other.
type SnapshotEvent struct {
	Residents []resident.Resident
	Alerts    []alert.Alert
}

func (SnapshotEvent) Kind() string { return "snapshot" }

// VitalUpdateEvent carries a new reading for one resident. The reading
// replaces the resident's latest vitals wholesale; a partial reading still
// becomes the new latest.
type VitalUpdateEvent struct {
	ResidentID string
	Vitals     *vitals.VitalReading
}

func (VitalUpdateEvent) Kind() string { return "vital_update" }

// NewAlertEvent introduces an alert pushed by the backend.
type NewAlertEvent struct {
	Alert alert.Alert
}

func (NewAlertEvent) Kind() string { return "new_alert" }

// AlertUpdateEvent carries the authoritative new record for an existing
// alert. It fully replaces any local record with the same id.
type AlertUpdateEvent struct {
	Alert alert.Alert
}

func (AlertUpdateEvent) Kind() string { return "alert_update" }

// Package alert defines the safety-alert model and its lifecycle state machine.
package alert

import "time"

// Status tracks where an alert is in its lifecycle.
type Status string

const (
	// StatusPending means created and awaiting staff attention.
	StatusPending Status = "pending"

	// StatusAcknowledged means a staff member has seen the alert.
	StatusAcknowledged Status = "acknowledged"

	// StatusResolved means the alert was closed with an outcome. Terminal.
	StatusResolved Status = "resolved"

	// StatusFalseAlarm means the backend dismissed the alert. Terminal, and
	// only ever set by backend-originated updates.
	StatusFalseAlarm Status = "false_alarm"
)

// Terminal reports whether the status is final. Terminal statuses never
// regress locally; only an authoritative backend event could ever say
// otherwise, and the backend does not.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusFalseAlarm
}

// CanAcknowledge reports whether an acknowledge action is meaningful from
// this status. Acknowledging from any other status is a no-op, not an error,
// because concurrent staff tabs may race on the same alert.
func (s Status) CanAcknowledge() bool {
	return s == StatusPending
}

// CanResolve reports whether a resolve action is meaningful from this status.
// Staff may resolve directly from pending without acknowledging first.
func (s Status) CanResolve() bool {
	return s == StatusPending || s == StatusAcknowledged
}

// Type is the severity class assigned by the ingestion backend.
type Type string

const (
	TypeCritical Type = "critical"
	TypeWarning  Type = "warning"
	TypeInfo     Type = "info"
)

// Alert is one safety alert raised for a resident. Alerts enter the session
// store via snapshot loads or push events and are mutated only by whole-record
// replacement; backend-originated status transitions are trusted verbatim even
// when they skip intermediate states.
type Alert struct {
	ID         string    `json:"id"`
	ResidentID string    `json:"residentId"`
	Type       Type      `json:"type"`
	Title      string    `json:"title"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`

	// Terminal metadata, present once resolved.
	Outcome string `json:"outcome,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

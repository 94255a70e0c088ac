// Package session is the reconciliation core behind the dashboard. It defines
// the tagged event variants (snapshot, vital-update, new-alert, alert-update),
// the pure reducer that folds them into the (resident, alert) projection, the
// Store that serializes mutations, and the Service that wraps staff actions as
// submit-then-reload against the ingestion backend.
package session

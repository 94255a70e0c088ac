// Package resident defines the resident model held by the session store.
package resident

import (
	"time"

	"github.com/linnemanlabs/wardview/internal/vitals"
)

// DevicePairing describes the wearable currently paired to a resident.
type DevicePairing struct {
	DeviceID string    `json:"deviceId"`
	Battery  *int      `json:"battery,omitempty"` // percent
	Signal   *int      `json:"signal,omitempty"`  // percent
	LastSync time.Time `json:"lastSync"`
}

// Resident is one tracked resident of the facility.
//
// CurrentStatus is always the classifier's output over LatestVitals and is
// recomputed whenever LatestVitals changes; it is never set independently.
// Residents are created by snapshot loads only and are never deleted by the
// session core (removal is a full-snapshot concern).
type Resident struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Room          string               `json:"room"`
	LatestVitals  *vitals.VitalReading `json:"latestVitals,omitempty"`
	CurrentStatus vitals.Status        `json:"currentStatus"`
	Device        *DevicePairing       `json:"device,omitempty"`
	ActiveAlerts  int                  `json:"activeAlerts"`
}

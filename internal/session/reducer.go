package session

import (
	"github.com/linnemanlabs/wardview/internal/alert"
	"github.com/linnemanlabs/wardview/internal/resident"
	"github.com/linnemanlabs/wardview/internal/vitals"
)

// State is the full projection at one point in time.
type State struct {
	Residents []resident.Resident
	Alerts    []alert.Alert
}

// Reduce folds one event into the state and returns the result. It is pure:
// the input state and event are never mutated, and applying the same event to
// the same state always yields the same result. Every handler is a whole-record
// replace, so redundant delivery of an event is a harmless overwrite.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case SnapshotEvent:
		return reduceSnapshot(e)
	case VitalUpdateEvent:
		return reduceVitalUpdate(s, e)
	case NewAlertEvent:
		return reduceNewAlert(s, e)
	case AlertUpdateEvent:
		return reduceAlertUpdate(s, e)
	default:
		return s
	}
}

// reduceSnapshot replaces both collections wholesale. CurrentStatus is
// re-derived from each resident's latest vitals rather than trusted from the
// wire, so the status invariant holds no matter what the backend sent.
func reduceSnapshot(e SnapshotEvent) State {
	residents := make([]resident.Resident, len(e.Residents))
	copy(residents, e.Residents)
	for i := range residents {
		residents[i].CurrentStatus = vitals.Classify(residents[i].LatestVitals)
	}

	alerts := make([]alert.Alert, len(e.Alerts))
	copy(alerts, e.Alerts)

	return State{Residents: residents, Alerts: alerts}
}

// reduceVitalUpdate replaces the resident's latest vitals and recomputes the
// derived status. An update for an unknown resident is dropped: only a full
// snapshot creates residents.
func reduceVitalUpdate(s State, e VitalUpdateEvent) State {
	idx := -1
	for i := range s.Residents {
		if s.Residents[i].ID == e.ResidentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}

	residents := make([]resident.Resident, len(s.Residents))
	copy(residents, s.Residents)
	residents[idx].LatestVitals = e.Vitals
	residents[idx].CurrentStatus = vitals.Classify(e.Vitals)

	return State{Residents: residents, Alerts: s.Alerts}
}

// reduceNewAlert prepends the alert so arrival order is preserved newest
// first. The push channel delivers at least once, so an alert already present
// under the same id is replaced in place instead of duplicated.
func reduceNewAlert(s State, e NewAlertEvent) State {
	for i := range s.Alerts {
		if s.Alerts[i].ID == e.Alert.ID {
			alerts := make([]alert.Alert, len(s.Alerts))
			copy(alerts, s.Alerts)
			alerts[i] = e.Alert
			return State{Residents: s.Residents, Alerts: alerts}
		}
	}

	alerts := make([]alert.Alert, 0, len(s.Alerts)+1)
	alerts = append(alerts, e.Alert)
	alerts = append(alerts, s.Alerts...)
	return State{Residents: s.Residents, Alerts: alerts}
}

// reduceAlertUpdate replaces the matching alert in place. An update with no
// local match is appended rather than dropped: it can race ahead of its
// new-alert event across a reconnect window.
func reduceAlertUpdate(s State, e AlertUpdateEvent) State {
	for i := range s.Alerts {
		if s.Alerts[i].ID == e.Alert.ID {
			alerts := make([]alert.Alert, len(s.Alerts))
			copy(alerts, s.Alerts)
			alerts[i] = e.Alert
			return State{Residents: s.Residents, Alerts: alerts}
		}
	}

	alerts := make([]alert.Alert, len(s.Alerts), len(s.Alerts)+1)
	copy(alerts, s.Alerts)
	alerts = append(alerts, e.Alert)
	return State{Residents: s.Residents, Alerts: alerts}
}

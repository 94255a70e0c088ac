// Package vitals defines vital-sign readings and the threshold classifier
// that maps a reading to a severity status.
package vitals

import "time"

// Status is the derived severity of a resident's latest vitals.
type Status string

const (
	// StatusNormal means no threshold was crossed (or no reading exists).
	StatusNormal Status = "normal"

	// StatusWarning means at least one warning threshold was crossed.
	StatusWarning Status = "warning"

	// StatusCritical means a critical threshold was crossed.
	StatusCritical Status = "critical"
)

// BloodPressure is a systolic/diastolic pair in mmHg.
type BloodPressure struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
}

// VitalReading is a point-in-time measurement from a resident's device.
// Fields are pointers because devices may report partial readings; a missing
// field never counts as evidence of abnormality. Readings are immutable once
// recorded and always replace a resident's latest vitals wholesale.
type VitalReading struct {
	HeartRate     *int           `json:"heartRate,omitempty"`     // bpm
	SpO2          *int           `json:"spo2,omitempty"`          // percent
	BloodPressure *BloodPressure `json:"bloodPressure,omitempty"` // mmHg
	Temperature   *float64       `json:"temperature,omitempty"`   // degrees F
	Timestamp     time.Time      `json:"timestamp"`
	Location      *string        `json:"location,omitempty"`
}

// Clinical thresholds. Rules are evaluated in priority order, critical first.
const (
	spo2Critical    = 90
	spo2Warning     = 94
	heartRateLow    = 50
	heartRateHigh   = 120
	temperatureHigh = 99.5
)

// Classify maps a reading to a severity status. Pure and total: a nil reading
// classifies as normal, and the first matching rule wins.
func Classify(v *VitalReading) Status {
	if v == nil {
		return StatusNormal
	}
	if v.SpO2 != nil && *v.SpO2 < spo2Critical {
		return StatusCritical
	}
	if v.HeartRate != nil && (*v.HeartRate < heartRateLow || *v.HeartRate > heartRateHigh) {
		return StatusWarning
	}
	if v.SpO2 != nil && *v.SpO2 < spo2Warning {
		return StatusWarning
	}
	if v.Temperature != nil && *v.Temperature > temperatureHigh {
		return StatusWarning
	}
	return StatusNormal
}

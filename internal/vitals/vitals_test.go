package vitals

import "testing"

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   *VitalReading
		want Status
	}{
		{"nil reading", nil, StatusNormal},
		{"empty reading", &VitalReading{}, StatusNormal},
		{"all nominal", &VitalReading{HeartRate: intp(70), SpO2: intp(97), Temperature: floatp(98)}, StatusNormal},
		{"low spo2 is critical", &VitalReading{SpO2: intp(89)}, StatusCritical},
		{"critical beats warning vitals", &VitalReading{SpO2: intp(89), HeartRate: intp(70), Temperature: floatp(98)}, StatusCritical},
		{"spo2 at critical boundary is still warning", &VitalReading{SpO2: intp(90)}, StatusWarning},
		{"spo2 in warning band", &VitalReading{SpO2: intp(93)}, StatusWarning},
		{"spo2 at warning boundary", &VitalReading{SpO2: intp(94)}, StatusNormal},
		{"bradycardia", &VitalReading{HeartRate: intp(49)}, StatusWarning},
		{"heart rate at low boundary", &VitalReading{HeartRate: intp(50)}, StatusNormal},
		{"tachycardia", &VitalReading{HeartRate: intp(130)}, StatusWarning},
		{"heart rate at high boundary", &VitalReading{HeartRate: intp(120)}, StatusNormal},
		{"fever", &VitalReading{Temperature: floatp(100.1)}, StatusWarning},
		{"temperature at boundary", &VitalReading{Temperature: floatp(99.5)}, StatusNormal},
		{"multiple warnings still warning", &VitalReading{HeartRate: intp(130), SpO2: intp(92), Temperature: floatp(101)}, StatusWarning},
		{"blood pressure alone never triggers", &VitalReading{BloodPressure: &BloodPressure{Systolic: 200, Diastolic: 120}}, StatusNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Classify(tt.in); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	in := &VitalReading{HeartRate: intp(130), SpO2: intp(92)}
	first := Classify(in)
	for i := 0; i < 100; i++ {
		if got := Classify(in); got != first {
			t.Fatalf("Classify() = %q on iteration %d, want %q", got, i, first)
		}
	}
	// input must not be mutated
	if *in.HeartRate != 130 || *in.SpO2 != 92 {
		t.Error("Classify mutated its input")
	}
}

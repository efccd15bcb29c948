package health

import (
	"encoding/json"
	"reflect"
	"testing"
)

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return raw
}

func TestMergeField(t *testing.T) {
	tests := []struct {
		name          string
		newer, legacy any
		want          any
	}{
		{"newer wins", "120", "130", "120"},
		{"nil newer falls back", nil, "130", "130"},
		{"blank newer falls back", "  ", "130", "130"},
		{"empty list falls back", []any{}, []any{"cough"}, []any{"cough"}},
		{"zero is present", float64(0), float64(5), float64(0)},
		{"both missing", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeField(tt.newer, tt.legacy); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeField(%v, %v) = %v, want %v", tt.newer, tt.legacy, got, tt.want)
			}
		})
	}
}

func TestNormalize_NewShape(t *testing.T) {
	r := Normalize(decode(t, `{
		"gender": "female",
		"height_cm": "170",
		"weight_kg": 70,
		"sleep_hours": "6.5",
		"alcohol": "sometimes",
		"smoking": "",
		"systolic": "150",
		"diastolic": 80,
		"heart_rate": "abc",
		"blood_sugar": "110",
		"temperature_c": 37.2,
		"symptoms": ["cough", " fever ", ""],
		"extra_notes": "  tired after work "
	}`))

	if r.Gender == nil || *r.Gender != "female" {
		t.Errorf("gender = %v", r.Gender)
	}
	if r.Smoking != nil {
		t.Errorf("empty smoking should be unspecified, got %q", *r.Smoking)
	}
	if r.Systolic == nil || *r.Systolic != 150 || r.Diastolic == nil || *r.Diastolic != 80 {
		t.Errorf("blood pressure = %v/%v", r.Systolic, r.Diastolic)
	}
	if r.HeartRate != nil {
		t.Errorf("malformed heart rate should be unspecified, got %d", *r.HeartRate)
	}
	if r.SleepHours == nil || *r.SleepHours != 6.5 {
		t.Errorf("sleep = %v", r.SleepHours)
	}
	if r.BMI == nil || *r.BMI != 24.2 {
		t.Errorf("bmi = %v, want derived 24.2", r.BMI)
	}
	if !reflect.DeepEqual(r.Symptoms, []string{"cough", "fever"}) {
		t.Errorf("symptoms = %#v", r.Symptoms)
	}
	if r.ExtraNotes == nil || *r.ExtraNotes != "tired after work" {
		t.Errorf("extra notes = %v", r.ExtraNotes)
	}
}

func TestNormalize_LegacyAndNewShapesAgree(t *testing.T) {
	newer := Normalize(decode(t, `{"systolic": 135, "diastolic": "85", "heart_rate": 64,
		"symptoms": ["chest pain"], "extra_notes": "x"}`))
	nested := Normalize(decode(t, `{"blood_pressure": {"systolic": "135", "diastolic": 85, "heart_rate": "64"},
		"symptom_list": "chest pain", "notes": "x"}`))
	flat := Normalize(decode(t, `{"bp_systolic": 135, "bp_diastolic": 85, "pulse": 64,
		"symptoms": [], "symptom_list": ["chest pain"], "notes": "x"}`))
	mixed := Normalize(decode(t, `{"systolic": "", "bp_systolic": 135, "diastolic": 85, "pulse": 64,
		"symptoms": ["chest pain"], "extra_notes": null, "notes": "x"}`))

	for name, got := range map[string]Record{"nested": nested, "flat": flat, "mixed": mixed} {
		if !reflect.DeepEqual(got, newer) {
			t.Errorf("%s shape normalized to %+v, want %+v", name, got, newer)
		}
	}
}

func TestNormalize_NewerFieldOverridesLegacy(t *testing.T) {
	r := Normalize(decode(t, `{"systolic": 120, "bp_systolic": 180, "blood_pressure": {"systolic": 170}}`))
	if r.Systolic == nil || *r.Systolic != 120 {
		t.Fatalf("systolic = %v, want 120", r.Systolic)
	}
}

func TestNormalize_BMI(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *float64
	}{
		{"provided", `{"bmi": "31.5", "height_cm": 170, "weight_kg": 70}`, fptr(31.5)},
		{"zero is derived", `{"bmi": 0, "height_cm": 170, "weight_kg": 70}`, fptr(24.2)},
		{"malformed is derived", `{"bmi": "n/a", "height_cm": 170, "weight_kg": 70}`, fptr(24.2)},
		{"missing height", `{"weight_kg": 70}`, nil},
		{"zero height", `{"height_cm": 0, "weight_kg": 70}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(decode(t, tt.body)).BMI
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("bmi = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("bmi = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	r := Normalize(nil)
	if r.Systolic != nil || r.BMI != nil || r.Gender != nil || r.TemperatureC != nil {
		t.Errorf("expected all fields unspecified, got %+v", r)
	}
	if r.Symptoms == nil || len(r.Symptoms) != 0 {
		t.Errorf("symptoms = %#v, want empty slice", r.Symptoms)
	}
}

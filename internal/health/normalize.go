package health

import (
	"fmt"
	"strings"
)

// MergeField applies the request-shape precedence rule: the value under the
// newer field name wins when it is present and non-empty, otherwise the
// legacy value is used.
func MergeField(newer, legacy any) any {
	if isEmpty(newer) {
		return legacy
	}
	return newer
}

// Normalize converts a decoded JSON request body into a Record. Both request
// shapes accepted by the analyze endpoint are understood:
//
//	legacy: {"blood_pressure": {"systolic", "diastolic"}, "bp_systolic", "bp_diastolic",
//	         "pulse", "symptom_list", "notes"}
//	newer:  {"systolic", "diastolic", "heart_rate", "symptoms", "extra_notes", ...}
//
// Malformed values are treated as unspecified.
func Normalize(raw map[string]any) Record {
	if raw == nil {
		raw = map[string]any{}
	}
	bp, _ := raw["blood_pressure"].(map[string]any)

	r := Record{
		Gender:       toLabel(raw["gender"]),
		HeightCm:     positive(ToDecimal(raw["height_cm"])),
		WeightKg:     positive(ToDecimal(raw["weight_kg"])),
		SleepHours:   nonNegative(ToDecimal(raw["sleep_hours"])),
		Alcohol:      toLabel(raw["alcohol"]),
		Smoking:      toLabel(raw["smoking"]),
		Systolic:     ToInteger(MergeField(raw["systolic"], MergeField(bp["systolic"], raw["bp_systolic"]))),
		Diastolic:    ToInteger(MergeField(raw["diastolic"], MergeField(bp["diastolic"], raw["bp_diastolic"]))),
		HeartRate:    ToInteger(MergeField(raw["heart_rate"], MergeField(bp["heart_rate"], raw["pulse"]))),
		BloodSugar:   ToDecimal(raw["blood_sugar"]),
		TemperatureC: ToDecimal(raw["temperature_c"]),
		Symptoms:     toSymptoms(MergeField(raw["symptoms"], raw["symptom_list"])),
		ExtraNotes:   toLabel(MergeField(raw["extra_notes"], raw["notes"])),
	}

	// A zero or missing BMI is indistinguishable from "not provided".
	r.BMI = positive(ToDecimal(raw["bmi"]))
	if r.BMI == nil {
		r.BMI = ComputeBMI(r.HeightCm, r.WeightKg)
	}
	return r
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func toLabel(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s = t
	case bool:
		return nil
	case float64, int, int64:
		s = fmt.Sprint(t)
	default:
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// toSymptoms accepts a JSON array of labels or a comma separated string.
func toSymptoms(v any) []string {
	var parts []string
	switch t := v.(type) {
	case string:
		parts = strings.Split(t, ",")
	case []string:
		parts = t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func positive(p *float64) *float64 {
	if p == nil || *p <= 0 {
		return nil
	}
	return p
}

func nonNegative(p *float64) *float64 {
	if p == nil || *p < 0 {
		return nil
	}
	return p
}

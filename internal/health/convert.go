package health

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToInteger converts a JSON-decoded value into an integer. Numbers and
// numeric strings are accepted; fractional parts are truncated toward zero.
// Absent, empty, boolean, non-numeric and non-finite inputs yield nil.
func ToInteger(v any) *int {
	f := ToDecimal(v)
	if f == nil {
		return nil
	}
	t := math.Trunc(*f)
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return nil
	}
	n := int(t)
	return &n
}

// ToDecimal converts a JSON-decoded value into a finite float64. It follows
// the same rules as ToInteger without truncation.
func ToDecimal(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ComputeBMI derives body-mass-index as weight / (height in meters)^2,
// rounded to one decimal place. It returns nil when either input is missing
// or not positive.
func ComputeBMI(heightCm, weightKg *float64) *float64 {
	h, ok := floatValue(heightCm)
	if !ok || h <= 0 {
		return nil
	}
	w, ok := floatValue(weightKg)
	if !ok || w <= 0 {
		return nil
	}
	m := h / 100.0
	bmi := roundTo(w/(m*m), 1)
	if math.IsNaN(bmi) || math.IsInf(bmi, 0) {
		return nil
	}
	return &bmi
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

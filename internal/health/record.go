// Package health turns loosely-typed health form input into a typed record
// and evaluates advisory threshold rules against it. Everything in this
// package is a pure function of its arguments; nothing here performs I/O or
// returns an error.
package health

// Record holds the normalized health metrics of a single request. A nil
// pointer means the value was not specified (or could not be parsed). A
// Record is built by Normalize and never mutated afterwards.
type Record struct {
	Gender       *string  `json:"gender"`
	HeightCm     *float64 `json:"height_cm"`
	WeightKg     *float64 `json:"weight_kg"`
	BMI          *float64 `json:"bmi"`
	SleepHours   *float64 `json:"sleep_hours"`
	Alcohol      *string  `json:"alcohol"`
	Smoking      *string  `json:"smoking"`
	Systolic     *int     `json:"systolic"`
	Diastolic    *int     `json:"diastolic"`
	HeartRate    *int     `json:"heart_rate"`
	BloodSugar   *float64 `json:"blood_sugar"`
	TemperatureC *float64 `json:"temperature_c"`
	Symptoms     []string `json:"symptoms"`
	ExtraNotes   *string  `json:"extra_notes"`
}

// HasSymptom reports whether any recorded symptom matches one of labels,
// ignoring case and surrounding whitespace.
func (r Record) HasSymptom(labels ...string) bool {
	for _, s := range r.Symptoms {
		if symptomMatches(s, labels) {
			return true
		}
	}
	return false
}

func intValue(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func floatValue(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

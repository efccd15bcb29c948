package health

import "strings"

// Flag is an advisory warning produced by a threshold rule.
type Flag string

const (
	FlagHighFever           Flag = "high fever (≥38°C)"
	FlagAbnormalHeartRate   Flag = "abnormal heart rate"
	FlagHighBloodPressure   Flag = "high blood pressure (≥140/90)"
	FlagLowBloodPressure    Flag = "low blood pressure (<90/60)"
	FlagHighBloodSugar      Flag = "high blood sugar (≥180 mg/dL)"
	FlagObesity             Flag = "BMI obesity class II (≥30)"
	FlagCardiopulmonaryRisk Flag = "possible cardiac/pulmonary risk — seek immediate care"
)

var thaiFlags = map[Flag]string{
	FlagHighFever:           "ไข้สูง (≥38°C)",
	FlagAbnormalHeartRate:   "ชีพจรผิดปกติ",
	FlagHighBloodPressure:   "ความดันสูง (≥140/90)",
	FlagLowBloodPressure:    "ความดันต่ำ (<90/60)",
	FlagHighBloodSugar:      "น้ำตาลสูง (≥180 mg/dL)",
	FlagObesity:             "BMI อ้วนระดับ 2 (≥30)",
	FlagCardiopulmonaryRisk: "อาการเสี่ยงหัวใจ/ปอด ควรพบแพทย์ทันที",
}

// Text returns the flag wording for lang ("en" or "th"). Unknown languages
// fall back to English.
func (f Flag) Text(lang string) string {
	if strings.EqualFold(lang, LangThai) {
		if s, ok := thaiFlags[f]; ok {
			return s
		}
	}
	return string(f)
}

// FlagTexts localizes flags, preserving order. The result is never nil.
func FlagTexts(flags []Flag, lang string) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.Text(lang))
	}
	return out
}

var (
	chestPain         = []string{"chest pain", "เจ็บหน้าอก"}
	shortnessOfBreath = []string{"shortness of breath", "หายใจลำบาก"}
	palpitations      = []string{"palpitations", "ใจสั่น"}
)

type rule struct {
	flag    Flag
	applies func(Record) bool
}

// rules is evaluated in order; output order follows it.
var rules = []rule{
	{FlagHighFever, func(r Record) bool {
		t, ok := floatValue(r.TemperatureC)
		return ok && t >= 38.0
	}},
	{FlagAbnormalHeartRate, func(r Record) bool {
		hr, ok := intValue(r.HeartRate)
		return ok && (hr > 100 || hr < 50)
	}},
	{FlagHighBloodPressure, func(r Record) bool {
		sys, sysOK := intValue(r.Systolic)
		dia, diaOK := intValue(r.Diastolic)
		return (sysOK && sys >= 140) || (diaOK && dia >= 90)
	}},
	{FlagLowBloodPressure, func(r Record) bool {
		sys, sysOK := intValue(r.Systolic)
		dia, diaOK := intValue(r.Diastolic)
		return (sysOK && sys < 90) || (diaOK && dia < 60)
	}},
	{FlagHighBloodSugar, func(r Record) bool {
		s, ok := floatValue(r.BloodSugar)
		return ok && s >= 180
	}},
	{FlagObesity, func(r Record) bool {
		b, ok := floatValue(r.BMI)
		return ok && b >= 30
	}},
	{FlagCardiopulmonaryRisk, func(r Record) bool {
		return r.HasSymptom(chestPain...) &&
			(r.HasSymptom(shortnessOfBreath...) || r.HasSymptom(palpitations...))
	}},
}

// EvaluateFlags runs every threshold rule against r and returns the flags
// that fired, in rule order. A rule whose metrics are unspecified does not
// fire. The result is never nil.
func EvaluateFlags(r Record) []Flag {
	flags := make([]Flag, 0, len(rules))
	for _, rl := range rules {
		if rl.applies(r) {
			flags = append(flags, rl.flag)
		}
	}
	return flags
}

func symptomMatches(symptom string, labels []string) bool {
	s := strings.TrimSpace(symptom)
	for _, l := range labels {
		if strings.EqualFold(s, l) {
			return true
		}
	}
	return false
}

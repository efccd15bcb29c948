package health

import (
	"strconv"
	"strings"
)

// Supported summary and flag languages.
const (
	LangEnglish = "en"
	LangThai    = "th"
)

type summaryLabels struct {
	unspecified   string
	gender        string
	height        string
	weight        string
	bmi           string
	sleep         string
	alcohol       string
	smoking       string
	bloodPressure string
	heartRate     string
	bloodSugar    string
	temperature   string
	symptoms      string
	notes         string
	flags         string
	cm            string
	kg            string
	hoursPerNight string
	mmHg          string
	bpm           string
}

var labelsByLang = map[string]summaryLabels{
	LangEnglish: {
		unspecified:   "not specified",
		gender:        "Gender",
		height:        "Height",
		weight:        "Weight",
		bmi:           "BMI",
		sleep:         "Sleep",
		alcohol:       "Alcohol",
		smoking:       "Smoking/tobacco",
		bloodPressure: "Blood pressure",
		heartRate:     "Heart rate",
		bloodSugar:    "Blood sugar",
		temperature:   "Body temperature",
		symptoms:      "Symptoms",
		notes:         "Additional symptoms/notes",
		flags:         "Preliminary warning flags",
		cm:            "cm",
		kg:            "kg",
		hoursPerNight: "h/night",
		mmHg:          "mmHg",
		bpm:           "bpm",
	},
	LangThai: {
		unspecified:   "ไม่ระบุ",
		gender:        "เพศ",
		height:        "ส่วนสูง",
		weight:        "น้ำหนัก",
		bmi:           "BMI",
		sleep:         "การนอน",
		alcohol:       "ดื่มแอลกอฮอล์",
		smoking:       "สูบบุหรี่/ยาสูบ",
		bloodPressure: "ความดันโลหิต",
		heartRate:     "ชีพจร",
		bloodSugar:    "น้ำตาลในเลือด",
		temperature:   "อุณหภูมิร่างกาย",
		symptoms:      "อาการที่พบ",
		notes:         "อาการเพิ่มเติม/บันทึก",
		flags:         "ธงเตือนเบื้องต้น",
		cm:            "ซม.",
		kg:            "กก.",
		hoursPerNight: "ชม./คืน",
		mmHg:          "mmHg",
		bpm:           "ครั้ง/นาที",
	},
}

// Summary renders r and its flags as the plain-text block handed to the
// language model. Unspecified numbers print as "-".
func Summary(r Record, flags []Flag, lang string) string {
	l, ok := labelsByLang[strings.ToLower(lang)]
	if !ok {
		l = labelsByLang[LangEnglish]
		lang = LangEnglish
	}

	lines := []string{
		l.gender + ": " + labelOr(r.Gender, l.unspecified),
		l.height + ": " + floatOr(r.HeightCm) + " " + l.cm + ", " +
			l.weight + ": " + floatOr(r.WeightKg) + " " + l.kg + ", " +
			l.bmi + ": " + floatOr(r.BMI),
		l.sleep + ": " + floatOr(r.SleepHours) + " " + l.hoursPerNight,
		l.alcohol + ": " + labelOr(r.Alcohol, l.unspecified) + " | " +
			l.smoking + ": " + labelOr(r.Smoking, l.unspecified),
		l.bloodPressure + ": " + intOr(r.Systolic) + " / " + intOr(r.Diastolic) + " " + l.mmHg,
		l.heartRate + ": " + intOr(r.HeartRate) + " " + l.bpm,
		l.bloodSugar + ": " + floatOr(r.BloodSugar) + " mg/dL",
		l.temperature + ": " + floatOr(r.TemperatureC) + " °C",
	}

	if len(r.Symptoms) > 0 {
		lines = append(lines, l.symptoms+": "+strings.Join(r.Symptoms, ", "))
	} else {
		lines = append(lines, l.symptoms+": "+l.unspecified)
	}
	if r.ExtraNotes != nil {
		lines = append(lines, l.notes+": "+*r.ExtraNotes)
	}
	if len(flags) > 0 {
		lines = append(lines, l.flags+": "+strings.Join(FlagTexts(flags, lang), ", "))
	}
	return strings.Join(lines, "\n")
}

func labelOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

func floatOr(p *float64) string {
	v, ok := floatValue(p)
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func intOr(p *int) string {
	v, ok := intValue(p)
	if !ok {
		return "-"
	}
	return strconv.Itoa(v)
}

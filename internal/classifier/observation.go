package classifier

import (
	"encoding/json"
	"math"
	"strings"
)

// Validation limits.
const (
	MinAge       = 0
	MaxAge       = 120
	MinHeartRate = 30
	MaxHeartRate = 250
)

// Sex of the patient.
type Sex string

const (
	SexMasculine Sex = "masculine"
	SexFeminine  Sex = "feminine"
)

// RawObservation is the unvalidated input as received from a caller.
// Fields hold decoded JSON values (json.Number, float64, string, []any ...)
// or plain Go values.
type RawObservation struct {
	Symptoms    any `json:"symptoms"`
	Temperature any `json:"temperature"`
	Age         any `json:"age"`
	Sex         any `json:"sex"`
	HeartRate   any `json:"heart_rate"`
}

// Observation is a validated patient observation. Symptoms are normalized
// (lowercase, trimmed).
type Observation struct {
	Symptoms    []string `json:"symptoms"`
	Temperature float64  `json:"temperature"`
	Age         int      `json:"age"`
	Sex         Sex      `json:"sex"`
	HeartRate   int      `json:"heart_rate"`
}

// NewObservation validates typed input and returns a normalized Observation.
func NewObservation(symptoms []string, temperature float64, age int, sex string, heartRate int) (Observation, error) {
	return Validate(RawObservation{
		Symptoms:    symptoms,
		Temperature: temperature,
		Age:         age,
		Sex:         sex,
		HeartRate:   heartRate,
	})
}

// Validate checks raw input in fixed order (symptoms, temperature, age, sex,
// heart rate) and returns the first failure as a *ValidationError.
func Validate(raw RawObservation) (Observation, error) {
	symptoms, ok := normalizeSymptoms(raw.Symptoms)
	if !ok {
		return Observation{}, invalid(FieldSymptoms, "symptoms must be a list of strings")
	}

	temperature, ok := asFloat(raw.Temperature)
	if !ok {
		return Observation{}, invalid(FieldTemperature, "temperature must be a number")
	}

	age, ok := asInt(raw.Age)
	if !ok || age < MinAge || age > MaxAge {
		return Observation{}, invalid(FieldAge, "invalid age, must be an integer between 0 and 120")
	}

	sex, ok := normalizeSex(raw.Sex)
	if !ok {
		return Observation{}, invalid(FieldSex, "invalid sex, use 'masculine' or 'feminine'")
	}

	heartRate, ok := asInt(raw.HeartRate)
	if !ok || heartRate < MinHeartRate || heartRate > MaxHeartRate {
		return Observation{}, invalid(FieldHeartRate, "invalid heart rate, must be an integer between 30 and 250")
	}

	return Observation{
		Symptoms:    symptoms,
		Temperature: temperature,
		Age:         age,
		Sex:         sex,
		HeartRate:   heartRate,
	}, nil
}

// NormalizeSymptom lowercases and trims a single symptom.
func NormalizeSymptom(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeSymptoms accepts a missing value (empty list) or a sequence.
// Non-string entries of a generic sequence are dropped.
func normalizeSymptoms(v any) ([]string, bool) {
	switch list := v.(type) {
	case nil:
		return []string{}, true
	case []string:
		out := make([]string, 0, len(list))
		for _, s := range list {
			out = append(out, NormalizeSymptom(s))
		}
		return out, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, NormalizeSymptom(s))
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func normalizeSex(v any) (Sex, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	switch sex := Sex(strings.ToLower(strings.TrimSpace(s))); sex {
	case SexMasculine, SexFeminine:
		return sex, true
	default:
		return "", false
	}
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// asInt accepts integers and integral floating-point values.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	f, ok := asFloat(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Has reports whether any of the given symptoms is present as an exact
// normalized token.
func (o Observation) Has(symptoms ...string) bool {
	for _, have := range o.Symptoms {
		for _, want := range symptoms {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Mentions reports whether any keyword occurs as a substring of the
// space-joined symptom text.
func (o Observation) Mentions(keywords ...string) bool {
	return o.countMentions(keywords) > 0
}

// countMentions returns how many distinct keywords occur in the joined text.
func (o Observation) countMentions(keywords []string) int {
	text := strings.Join(o.Symptoms, " ")
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

// HasSymptoms reports whether at least one symptom was reported.
func (o Observation) HasSymptoms() bool {
	return len(o.Symptoms) > 0
}

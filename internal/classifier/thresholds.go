package classifier

// BradycardiaThreshold is the heart rate (bpm) below which bradycardia is
// considered symptomatic. It does not depend on age.
const BradycardiaThreshold = 50

// HeartRateThresholds are the age-dependent tachycardia cut-offs in bpm.
type HeartRateThresholds struct {
	NormalHigh       int `json:"normal_high"`
	MildTachycardia  int `json:"mild_tachycardia"`
	AcuteTachycardia int `json:"acute_tachycardia"`
}

// ThresholdsForAge derives the heart-rate thresholds for an age in years.
func ThresholdsForAge(age int) HeartRateThresholds {
	switch {
	case age < 1:
		return HeartRateThresholds{NormalHigh: 160, MildTachycardia: 180, AcuteTachycardia: 200}
	case age < 6:
		return HeartRateThresholds{NormalHigh: 140, MildTachycardia: 160, AcuteTachycardia: 180}
	case age < 12:
		return HeartRateThresholds{NormalHigh: 120, MildTachycardia: 140, AcuteTachycardia: 160}
	default:
		return HeartRateThresholds{NormalHigh: 100, MildTachycardia: 120, AcuteTachycardia: 140}
	}
}

// IsAgeVulnerable reports whether fever and heart-rate thresholds should be
// lowered for this age (young children and older adults).
func IsAgeVulnerable(age int) bool {
	return age < 5 || age > 65
}

package classifier

// Predicate is a pure condition over an observation and its derived
// heart-rate thresholds.
type Predicate func(o Observation, t HeartRateThresholds) bool

// Rule is a named predicate inside a rule group.
type Rule struct {
	Name  string
	Match Predicate
}

// RuleGroup yields Category when any of its rules matches.
type RuleGroup struct {
	Category Category
	Rules    []Rule
}

// Matches returns the first matching rule of the group.
func (g RuleGroup) Matches(o Observation, t HeartRateThresholds) (Rule, bool) {
	for _, r := range g.Rules {
		if r.Match(o, t) {
			return r, true
		}
	}
	return Rule{}, false
}

// Keyword sets. Which matching style applies (exact token via Has, or
// substring of the joined text via Mentions) is decided per rule.
var (
	terminalKeywords = []string{
		"terminal-stage cancer",
		"diagnosed terminal illness",
		"multi-organ failure",
		"advanced degenerative disease",
		"palliative care",
	}

	chronicRespiratoryConditions = []string{"asthma", "copd", "chronic obstructive pulmonary disease"}
	chronicRespiratorySymptoms   = []string{"frequent cough", "mild habitual breathing difficulty", "wheezing"}
	diabetesSymptoms             = []string{"excessive thirst", "frequent urination", "gradual blurred vision"}
	elderlyChronicSymptoms       = []string{"persistent fatigue", "chronic joint pain", "progressive reduced mobility"}
	commonMildSymptoms           = []string{"tiredness", "mild pain", "general malaise"}

	acuteKeywords = []string{
		"severe breathing difficulty",
		"oppressive chest pain",
		"radiating chest pain",
		"acute confusion",
		"sudden disorientation",
		"persistent intense vomiting",
		"very high fever",
		"loss of consciousness",
		"inability to move",
		"seizures",
	}
	chestPain                   = []string{"oppressive chest pain", "radiating chest pain"}
	symptomaticBradycardiaSigns = []string{"intense dizziness", "extreme weakness", "loss of consciousness", "confusion"}

	mildKeywords = []string{
		"cough",
		"sore throat",
		"nasal congestion",
		"mild headache",
		"general malaise",
		"mild fever",
		"mild muscle pain",
		"mild fatigue",
		"sneezing",
	}

	trivialSymptoms = []string{"slight momentary tiredness", "a bit sleepy"}
)

// DefaultRuleGroups returns the cascade in priority order, most severe
// first. CHRONIC is evaluated before ACUTE.
func DefaultRuleGroups() []RuleGroup {
	return []RuleGroup{
		{Category: CategoryTerminalIllness, Rules: terminalRules},
		{Category: CategoryChronicIllness, Rules: chronicRules},
		{Category: CategoryAcuteIllness, Rules: acuteRules},
		{Category: CategoryMildIllness, Rules: mildRules},
		{Category: CategoryNotSick, Rules: notSickRules},
	}
}

var terminalRules = []Rule{
	{"terminal.keyword", func(o Observation, _ HeartRateThresholds) bool {
		return o.Mentions(terminalKeywords...)
	}},
	{"terminal.organ_failure", func(o Observation, _ HeartRateThresholds) bool {
		return (o.Has("hepatic failure") && o.Has("renal failure")) ||
			(o.Has("advanced cardiac failure") && o.Has("extreme difficulty breathing"))
	}},
	{"terminal.metastasis", func(o Observation, _ HeartRateThresholds) bool {
		return o.Has("metastasis") && o.Has("severe chronic pain", "extreme weight loss")
	}},
	{"terminal.elderly_decline", func(o Observation, _ HeartRateThresholds) bool {
		return o.Age > 80 &&
			o.Has("advanced cognitive decline", "total incapacity") &&
			(o.HeartRate < 50 || o.HeartRate > 140) &&
			o.Temperature < 35.0
	}},
}

var chronicRules = []Rule{
	{"chronic.hypertension", func(o Observation, _ HeartRateThresholds) bool {
		return o.Has("diagnosed hypertension")
	}},
	{"chronic.diabetes", func(o Observation, _ HeartRateThresholds) bool {
		return o.Has("known diabetes") && o.Has(diabetesSymptoms...)
	}},
	{"chronic.respiratory", func(o Observation, _ HeartRateThresholds) bool {
		return o.Has(chronicRespiratoryConditions...) &&
			o.Has(chronicRespiratorySymptoms...) &&
			o.Temperature < 38.0
	}},
	{"chronic.elderly", func(o Observation, t HeartRateThresholds) bool {
		if o.Age <= 70 || o.Temperature > 38.5 {
			return false
		}
		if o.Has(elderlyChronicSymptoms...) {
			return true
		}
		return len(o.Symptoms) >= 2 &&
			(o.HeartRate > t.NormalHigh+10 || o.HeartRate < 55) &&
			o.Mentions(commonMildSymptoms...)
	}},
}

var acuteRules = []Rule{
	{"acute.high_fever", func(o Observation, _ HeartRateThresholds) bool {
		return o.Temperature >= 39.5 || (IsAgeVulnerable(o.Age) && o.Temperature >= 39.0)
	}},
	{"acute.keyword", func(o Observation, _ HeartRateThresholds) bool {
		return o.Mentions(acuteKeywords...)
	}},
	{"acute.tachycardia", func(o Observation, t HeartRateThresholds) bool {
		return o.HeartRate > t.AcuteTachycardia && (o.HasSymptoms() || o.Temperature > 38.0)
	}},
	{"acute.bradycardia", func(o Observation, _ HeartRateThresholds) bool {
		return o.HeartRate < BradycardiaThreshold && o.Has(symptomaticBradycardiaSigns...)
	}},
	{"acute.chest_pain", func(o Observation, t HeartRateThresholds) bool {
		return o.Has(chestPain...) &&
			(o.Age > 40 || o.HeartRate > t.MildTachycardia || o.Has("cold sweating", "intense nausea"))
	}},
	{"acute.vulnerable", func(o Observation, t HeartRateThresholds) bool {
		if !IsAgeVulnerable(o.Age) || len(o.Symptoms) < 2 {
			return false
		}
		if o.Temperature <= 38.0 && o.HeartRate <= t.MildTachycardia {
			return false
		}
		// Persistent fatigue without high fever is left to the chronic/mild groups.
		return !(o.Has("persistent fatigue") && o.Temperature < 38.5)
	}},
}

var mildRules = []Rule{
	{"mild.fever", func(o Observation, t HeartRateThresholds) bool {
		return o.Temperature >= 37.8 && o.Temperature < 39.0 &&
			(o.HasSymptoms() || o.HeartRate > t.NormalHigh)
	}},
	{"mild.keyword_with_vitals", func(o Observation, t HeartRateThresholds) bool {
		return o.Mentions(mildKeywords...) &&
			(o.Temperature > 37.2 || slightTachycardia(o, t))
	}},
	{"mild.multiple_keywords", func(o Observation, _ HeartRateThresholds) bool {
		return o.countMentions(mildKeywords) >= 2
	}},
	{"mild.altered_vitals", func(o Observation, t HeartRateThresholds) bool {
		return o.HasSymptoms() &&
			((o.Temperature > 37.2 && o.Temperature < 37.8) || slightTachycardia(o, t))
	}},
}

var notSickRules = []Rule{
	{"not_sick.normal_vitals", func(o Observation, t HeartRateThresholds) bool {
		if o.Temperature > 37.2 || o.HeartRate < BradycardiaThreshold || o.HeartRate > t.NormalHigh {
			return false
		}
		return !o.HasSymptoms() || (len(o.Symptoms) == 1 && o.Has(trivialSymptoms...))
	}},
}

func slightTachycardia(o Observation, t HeartRateThresholds) bool {
	return o.HeartRate > t.NormalHigh && o.HeartRate <= t.MildTachycardia
}

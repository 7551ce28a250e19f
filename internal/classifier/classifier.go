// Package classifier maps a patient observation (symptoms, temperature, age,
// sex, heart rate) to one of five severity categories using a fixed,
// priority-ordered rule cascade.
//
// This is a rule-based simulation. It has no learned model, no calibration
// and no clinical validation, and must not be used for medical diagnosis.
package classifier

// FallbackRule names the decision taken when no rule group matched.
const FallbackRule = "fallback"

// Decision is the outcome of a classification together with the rule that
// produced it.
type Decision struct {
	Category   Category            `json:"diagnosis"`
	Rule       string              `json:"rule"`
	Thresholds HeartRateThresholds `json:"thresholds"`
}

// Classifier evaluates rule groups in order; the first matching group wins.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	groups []RuleGroup
}

// New creates a Classifier with the default cascade.
func New() *Classifier {
	return &Classifier{groups: DefaultRuleGroups()}
}

// NewWithGroups creates a Classifier with a custom cascade.
func NewWithGroups(groups []RuleGroup) *Classifier {
	return &Classifier{groups: groups}
}

// Decide classifies a validated observation.
func (c *Classifier) Decide(o Observation) Decision {
	t := ThresholdsForAge(o.Age)
	for _, g := range c.groups {
		if rule, ok := g.Matches(o, t); ok {
			return Decision{Category: g.Category, Rule: rule.Name, Thresholds: t}
		}
	}

	d := Decision{Category: CategoryNotSick, Rule: FallbackRule, Thresholds: t}
	if o.HasSymptoms() {
		d.Category = CategoryMildIllness
	}
	return d
}

// Classify returns only the category of a validated observation.
func (c *Classifier) Classify(o Observation) Category {
	return c.Decide(o).Category
}

// Evaluate validates raw input and classifies it. On failure it returns a
// *ValidationError and no decision.
func (c *Classifier) Evaluate(raw RawObservation) (Observation, Decision, error) {
	o, err := Validate(raw)
	if err != nil {
		return Observation{}, Decision{}, err
	}
	return o, c.Decide(o), nil
}

var defaultClassifier = New()

// Classify classifies a validated observation with the default cascade.
func Classify(o Observation) Category {
	return defaultClassifier.Classify(o)
}

// Evaluate validates and classifies raw input with the default cascade.
func Evaluate(raw RawObservation) (Category, error) {
	_, d, err := defaultClassifier.Evaluate(raw)
	if err != nil {
		return "", err
	}
	return d.Category, nil
}

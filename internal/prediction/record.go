package prediction

import (
	"time"

	"github.com/healthsim/diagnosis/internal/classifier"
	"github.com/healthsim/diagnosis/internal/shared/types"
)

// Record is one classified observation as it is kept in the prediction log.
type Record struct {
	ID          types.ID            `json:"id"`
	CreatedAt   time.Time           `json:"created_at"`
	Symptoms    []string            `json:"symptoms"`
	Temperature float64             `json:"temperature"`
	Age         int                 `json:"age"`
	Sex         classifier.Sex      `json:"sex"`
	HeartRate   int                 `json:"heart_rate"`
	Diagnosis   classifier.Category `json:"diagnosis"`
	Rule        string              `json:"rule"`
}

// NewRecord creates a record for a decision taken on a validated observation.
func NewRecord(o classifier.Observation, d classifier.Decision) *Record {
	symptoms := make([]string, len(o.Symptoms))
	copy(symptoms, o.Symptoms)

	return &Record{
		ID:          types.NewID(),
		CreatedAt:   time.Now().UTC(),
		Symptoms:    symptoms,
		Temperature: o.Temperature,
		Age:         o.Age,
		Sex:         o.Sex,
		HeartRate:   o.HeartRate,
		Diagnosis:   d.Category,
		Rule:        d.Rule,
	}
}

// Observation returns the observation the record was classified from.
func (r *Record) Observation() classifier.Observation {
	return classifier.Observation{
		Symptoms:    r.Symptoms,
		Temperature: r.Temperature,
		Age:         r.Age,
		Sex:         r.Sex,
		HeartRate:   r.HeartRate,
	}
}

func (r *Record) validate() error {
	if r == nil {
		return ErrInvalidRecord
	}
	if _, err := r.ID.UUID(); err != nil || !r.Diagnosis.IsValid() {
		return ErrInvalidRecord
	}
	return nil
}

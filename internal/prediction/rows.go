package prediction

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/healthsim/diagnosis/internal/classifier"
	"github.com/healthsim/diagnosis/internal/shared/types"
)

// recordRow is a predictions row as the SQL stores scan it, before any
// conversion into domain types.
type recordRow struct {
	ID          string
	CreatedAt   time.Time
	Symptoms    []byte
	Temperature float64
	Age         int
	Sex         string
	HeartRate   int
	Diagnosis   string
	Rule        string
}

// dest returns scan targets in the column order both SELECTs use.
func (row *recordRow) dest() []any {
	return []any{
		&row.ID, &row.CreatedAt, &row.Symptoms, &row.Temperature, &row.Age,
		&row.Sex, &row.HeartRate, &row.Diagnosis, &row.Rule,
	}
}

func (row *recordRow) record() (Record, error) {
	id, err := types.ParseID(row.ID)
	if err != nil {
		return Record{}, err
	}
	diagnosis, err := classifier.ParseCategory(row.Diagnosis)
	if err != nil {
		return Record{}, fmt.Errorf("prediction %s: %w", id, err)
	}

	symptoms := []string{}
	if len(row.Symptoms) > 0 {
		if err := json.Unmarshal(row.Symptoms, &symptoms); err != nil {
			return Record{}, fmt.Errorf("prediction %s: failed to unmarshal symptoms: %w", id, err)
		}
		if symptoms == nil {
			symptoms = []string{}
		}
	}

	return Record{
		ID:          id,
		CreatedAt:   row.CreatedAt.UTC(),
		Symptoms:    symptoms,
		Temperature: row.Temperature,
		Age:         row.Age,
		Sex:         classifier.Sex(row.Sex),
		HeartRate:   row.HeartRate,
		Diagnosis:   diagnosis,
		Rule:        row.Rule,
	}, nil
}

// addCount folds one GROUP BY row into counts.
func addCount(counts map[classifier.Category]int, diagnosis string, n int64) error {
	c, err := classifier.ParseCategory(diagnosis)
	if err != nil {
		return fmt.Errorf("failed to count predictions: %w", err)
	}
	counts[c] += int(n)
	return nil
}

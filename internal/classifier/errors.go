package classifier

import (
	"errors"
	"fmt"
)

// ErrInvalidObservation is wrapped by every ValidationError.
var ErrInvalidObservation = errors.New("invalid observation")

// Observation fields, in the order they are validated.
const (
	FieldSymptoms    = "symptoms"
	FieldTemperature = "temperature"
	FieldAge         = "age"
	FieldSex         = "sex"
	FieldHeartRate   = "heart_rate"
)

// ValidationError reports the first observation field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidObservation
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

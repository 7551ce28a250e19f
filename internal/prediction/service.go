package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/healthsim/diagnosis/internal/classifier"
	"github.com/healthsim/diagnosis/internal/shared/metrics"
)

// Report summarizes the prediction log.
type Report struct {
	Total  int                         `json:"total"`
	Counts map[classifier.Category]int `json:"counts"`
	Recent []Record                    `json:"recent"`
}

// Service classifies observations and records every prediction.
type Service struct {
	classifier  *classifier.Classifier
	store       Store
	driver      string
	recentLimit int
	capacity    int
	logger      *slog.Logger
	pick        func(n int) int
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// Driver labels store metrics
	Driver string
	// RecentLimit is the default number of records in a report
	RecentLimit int
	// Capacity caps the number of records a report may request
	Capacity int
}

// NewService creates a prediction service backed by store.
func NewService(store Store, cfg ServiceConfig, logger *slog.Logger) *Service {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1000
	}
	if cfg.RecentLimit <= 0 || cfg.RecentLimit > cfg.Capacity {
		cfg.RecentLimit = min(10, cfg.Capacity)
	}
	return &Service{
		classifier:  classifier.New(),
		store:       store,
		driver:      cfg.Driver,
		recentLimit: cfg.RecentLimit,
		capacity:    cfg.Capacity,
		logger:      logger,
		pick:        rand.Intn,
	}
}

// Predict validates raw input, classifies it and appends the result to the
// log. Validation failures are returned as *classifier.ValidationError.
func (s *Service) Predict(ctx context.Context, raw classifier.RawObservation) (*Record, error) {
	o, d, err := s.classifier.Evaluate(raw)
	if err != nil {
		var vErr *classifier.ValidationError
		if errors.As(err, &vErr) {
			metrics.RecordValidationFailure(vErr.Field)
			s.logger.WarnContext(ctx, "rejected observation", "field", vErr.Field, "reason", vErr.Reason)
		}
		return nil, err
	}

	rec := NewRecord(o, d)

	start := time.Now()
	err = s.store.Append(ctx, rec)
	metrics.RecordStoreOperation(s.driver, "append", time.Since(start), err)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record prediction", "id", rec.ID, "error", err)
		return nil, fmt.Errorf("failed to record prediction: %w", err)
	}

	metrics.RecordPrediction(string(d.Category), d.Rule)
	s.logger.InfoContext(ctx, "prediction",
		"id", rec.ID,
		"diagnosis", d.Category,
		"rule", d.Rule,
		"symptoms", o.Symptoms,
		"temperature", o.Temperature,
		"age", o.Age,
		"sex", o.Sex,
		"heart_rate", o.HeartRate,
	)
	return rec, nil
}

// Report returns the per-diagnosis tally, including zero counts, and the
// most recent records. A limit of zero uses the configured default.
func (s *Service) Report(ctx context.Context, limit int) (*Report, error) {
	if limit == 0 {
		limit = s.recentLimit
	}
	if limit < 0 || limit > s.capacity {
		return nil, fmt.Errorf("%w: limit must be in [1, %d]", ErrInvalidLimit, s.capacity)
	}

	start := time.Now()
	counts, err := s.store.Counts(ctx)
	metrics.RecordStoreOperation(s.driver, "counts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count predictions: %w", err)
	}

	start = time.Now()
	recent, err := s.store.Recent(ctx, limit)
	metrics.RecordStoreOperation(s.driver, "recent", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}

	report := &Report{Counts: zeroCounts(), Recent: recent}
	for c, n := range counts {
		if c.IsValid() {
			report.Counts[c] = n
			report.Total += n
		}
	}
	return report, nil
}

// Random returns a uniformly chosen category. It is a smoke-test helper and
// does not touch the log.
func (s *Service) Random() classifier.Category {
	categories := classifier.Categories()
	return categories[s.pick(len(categories))]
}

// Ready reports whether the store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Health(ctx)
}

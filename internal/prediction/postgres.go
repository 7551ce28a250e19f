package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/healthsim/diagnosis/internal/classifier"
	"github.com/healthsim/diagnosis/internal/shared/config"
	"github.com/healthsim/diagnosis/internal/shared/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the prediction log in the predictions table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgresStore connects, applies pending migrations and returns the store.
func OpenPostgresStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*PostgresStore, error) {
	pool, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Append(ctx context.Context, r *Record) error {
	if err := r.validate(); err != nil {
		return err
	}

	symptoms, err := json.Marshal(r.Symptoms)
	if err != nil {
		return fmt.Errorf("failed to marshal symptoms: %w", err)
	}

	query := `
		INSERT INTO predictions (
			id, created_at, symptoms, temperature, age, sex, heart_rate, diagnosis, rule
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.pool.Exec(ctx, query,
		r.ID.String(), r.CreatedAt, symptoms, r.Temperature, r.Age,
		string(r.Sex), r.HeartRate, string(r.Diagnosis), r.Rule,
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		return []Record{}, nil
	}

	query := `
		SELECT id::text, created_at, symptoms, temperature, age, sex, heart_rate, diagnosis, rule
		FROM predictions
		ORDER BY created_at DESC, id
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var row recordRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read predictions: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Counts(ctx context.Context) (map[classifier.Category]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT diagnosis, COUNT(*) FROM predictions GROUP BY diagnosis`)
	if err != nil {
		return nil, fmt.Errorf("failed to count predictions: %w", err)
	}
	defer rows.Close()

	counts := zeroCounts()
	for rows.Next() {
		var (
			diagnosis string
			n         int64
		)
		if err := rows.Scan(&diagnosis, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		if err := addCount(counts, diagnosis, n); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read counts: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

package prediction

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver
	"github.com/healthsim/diagnosis/internal/classifier"
	"github.com/healthsim/diagnosis/internal/shared/config"
)

const sqlServerSchema = `
IF OBJECT_ID(N'dbo.predictions', N'U') IS NULL
BEGIN
	CREATE TABLE dbo.predictions (
		id          UNIQUEIDENTIFIER NOT NULL PRIMARY KEY,
		created_at  DATETIME2 NOT NULL,
		symptoms    NVARCHAR(MAX) NOT NULL,
		temperature FLOAT NOT NULL,
		age         INT NOT NULL,
		sex         NVARCHAR(16) NOT NULL,
		heart_rate  INT NOT NULL,
		diagnosis   NVARCHAR(32) NOT NULL,
		[rule]      NVARCHAR(64) NOT NULL
	);
	CREATE INDEX idx_predictions_created_at ON dbo.predictions (created_at DESC);
END`

// SQLServerStore keeps the prediction log in a SQL Server table.
type SQLServerStore struct {
	db *sql.DB
}

// OpenSQLServerStore connects and ensures the predictions table exists.
func OpenSQLServerStore(ctx context.Context, cfg config.SQLServerConfig) (*SQLServerStore, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqlServerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure predictions table: %w", err)
	}

	return &SQLServerStore{db: db}, nil
}

func (s *SQLServerStore) Append(ctx context.Context, r *Record) error {
	if err := r.validate(); err != nil {
		return err
	}

	symptoms, err := json.Marshal(r.Symptoms)
	if err != nil {
		return fmt.Errorf("failed to marshal symptoms: %w", err)
	}

	query := `
		INSERT INTO dbo.predictions (
			id, created_at, symptoms, temperature, age, sex, heart_rate, diagnosis, [rule]
		) VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9)`

	_, err = s.db.ExecContext(ctx, query,
		r.ID.String(), r.CreatedAt, string(symptoms), r.Temperature, r.Age,
		string(r.Sex), r.HeartRate, string(r.Diagnosis), r.Rule,
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

func (s *SQLServerStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		return []Record{}, nil
	}

	query := `
		SELECT TOP (@p1) CONVERT(NVARCHAR(36), id), created_at, symptoms, temperature,
			age, sex, heart_rate, diagnosis, [rule]
		FROM dbo.predictions
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, limit)
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

func (s *SQLServerStore) Counts(ctx context.Context) (map[classifier.Category]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT diagnosis, COUNT(*) FROM dbo.predictions GROUP BY diagnosis`)
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

func (s *SQLServerStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLServerStore) Close() error {
	return s.db.Close()
}

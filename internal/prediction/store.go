package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/healthsim/diagnosis/internal/classifier"
	"github.com/healthsim/diagnosis/internal/shared/config"
)

var (
	// ErrInvalidRecord is returned when a record without id or diagnosis is appended.
	ErrInvalidRecord = errors.New("invalid prediction record")
	// ErrInvalidLimit is returned for a report limit outside the log capacity.
	ErrInvalidLimit = errors.New("invalid report limit")
)

// Store is the prediction log: an append-only history plus a tally of
// diagnoses. Implementations must be safe for concurrent use.
type Store interface {
	// Append records a prediction and increments its diagnosis tally.
	Append(ctx context.Context, r *Record) error
	// Recent returns at most limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	// Counts returns the number of predictions recorded per diagnosis.
	Counts(ctx context.Context) (map[classifier.Category]int, error)
	// Health reports whether the backing storage is reachable.
	Health(ctx context.Context) error
	Close() error
}

// OpenStore opens the store selected by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return NewMemoryStore(cfg.Store.Capacity), nil
	case config.StoreFile:
		return OpenFileStore(cfg.Store.FilePath, cfg.Store.Capacity)
	case config.StorePostgres:
		return OpenPostgresStore(ctx, cfg.Database, logger)
	case config.StoreSQLServer:
		return OpenSQLServerStore(ctx, cfg.SQLServer)
	case config.StoreKurrentDB:
		return OpenKurrentDBStore(ctx, cfg.KurrentDB, cfg.Store.Capacity)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func zeroCounts() map[classifier.Category]int {
	counts := make(map[classifier.Category]int, len(classifier.Categories()))
	for _, c := range classifier.Categories() {
		counts[c] = 0
	}
	return counts
}

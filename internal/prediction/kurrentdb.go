package prediction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/healthsim/diagnosis/internal/classifier"
	"github.com/healthsim/diagnosis/internal/kurrentdb"
	"github.com/healthsim/diagnosis/internal/shared/config"
)

// EventPredictionRecorded is the event type written for every prediction.
const EventPredictionRecorded = "PredictionRecorded"

// KurrentDBStore writes every prediction as an event and serves reads from
// a MemoryStore rebuilt by replaying the stream on open.
type KurrentDBStore struct {
	client *kurrentdb.Client
	stream *kurrentdb.Stream
	mem    *MemoryStore
}

// OpenKurrentDBStore connects and replays the prediction stream.
func OpenKurrentDBStore(ctx context.Context, cfg config.KurrentDBConfig, capacity int) (*KurrentDBStore, error) {
	client, err := kurrentdb.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	s := &KurrentDBStore{
		client: client,
		stream: kurrentdb.NewStream(client, cfg.Stream),
		mem:    NewMemoryStore(capacity),
	}
	if err := s.replay(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

func (s *KurrentDBStore) replay(ctx context.Context) error {
	return s.stream.Replay(ctx, func(e kurrentdb.Event) error {
		rec, err := decodeEvent(e)
		if err != nil || rec == nil {
			return err
		}
		return s.mem.Append(ctx, rec)
	})
}

// decodeEvent maps a stream event to a record. Events of other types are
// skipped with a nil record.
func decodeEvent(e kurrentdb.Event) (*Record, error) {
	if e.Type != EventPredictionRecorded {
		return nil, nil
	}
	var rec Record
	if err := json.Unmarshal(e.Data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode event %s: %w", e.ID, err)
	}
	if err := rec.validate(); err != nil {
		return nil, fmt.Errorf("event %s: %w", e.ID, err)
	}
	return &rec, nil
}

func (s *KurrentDBStore) Append(ctx context.Context, r *Record) error {
	if err := r.validate(); err != nil {
		return err
	}
	eventID, err := r.ID.UUID()
	if err != nil {
		return ErrInvalidRecord
	}
	if err := s.stream.Append(ctx, eventID, EventPredictionRecorded, r); err != nil {
		return err
	}
	return s.mem.Append(ctx, r)
}

func (s *KurrentDBStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	return s.mem.Recent(ctx, limit)
}

func (s *KurrentDBStore) Counts(ctx context.Context) (map[classifier.Category]int, error) {
	return s.mem.Counts(ctx)
}

func (s *KurrentDBStore) Health(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

func (s *KurrentDBStore) Close() error {
	return s.client.Close()
}

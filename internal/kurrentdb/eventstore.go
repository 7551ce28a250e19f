package kurrentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/EventStore/EventStore-Client-Go/v4/esdb"
	"github.com/google/uuid"
)

// Event is a single entry read back from a stream.
type Event struct {
	ID   uuid.UUID
	Type string
	Data []byte
}

// Stream appends to and replays a single KurrentDB stream.
type Stream struct {
	client *Client
	name   string
}

// NewStream binds a stream name to a client.
func NewStream(client *Client, name string) *Stream {
	return &Stream{client: client, name: name}
}

// Name returns the stream name.
func (s *Stream) Name() string {
	return s.name
}

// Append writes one JSON event. Appends never check the expected revision
// since the stream is an append-only log.
func (s *Stream) Append(ctx context.Context, id uuid.UUID, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := esdb.EventData{
		EventID:     id,
		EventType:   eventType,
		ContentType: esdb.ContentTypeJson,
		Data:        payload,
	}

	_, err = s.client.DB().AppendToStream(ctx, s.name, esdb.AppendToStreamOptions{
		ExpectedRevision: esdb.Any{},
	}, event)
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", s.name, err)
	}
	return nil
}

// Replay reads the whole stream forwards and calls fn for each event.
// A stream that does not exist yet replays nothing.
func (s *Stream) Replay(ctx context.Context, fn func(Event) error) error {
	readStream, err := s.client.DB().ReadStream(ctx, s.name, esdb.ReadStreamOptions{
		From:      esdb.Start{},
		Direction: esdb.Forwards,
	}, math.MaxInt64)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to read stream %s: %w", s.name, err)
	}
	defer readStream.Close()

	for {
		resolved, err := readStream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return fmt.Errorf("failed to read stream %s: %w", s.name, err)
		}
		if resolved.Event == nil {
			continue
		}

		if err := fn(Event{
			ID:   resolved.Event.EventID,
			Type: resolved.Event.EventType,
			Data: resolved.Event.Data,
		}); err != nil {
			return err
		}
	}
}

func isNotFound(err error) bool {
	if esdbErr, ok := esdb.FromError(err); !ok {
		return esdbErr.Code() == esdb.ErrorCodeResourceNotFound
	}
	return false
}

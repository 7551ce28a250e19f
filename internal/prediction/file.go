package prediction

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/healthsim/diagnosis/internal/classifier"
)

// FileStore appends every prediction as one NDJSON line and serves reads
// from a MemoryStore rebuilt from the file on open.
type FileStore struct {
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	path string
	mem  *MemoryStore
}

// OpenFileStore opens (or creates) the log at path and replays it. A torn
// final line is cut off so the next append starts on a fresh line.
func OpenFileStore(path string, capacity int) (*FileStore, error) {
	mem := NewMemoryStore(capacity)
	tail, err := replayFile(path, mem)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("file store: open %s: %w", path, err)
	}
	if err := repairTail(f, tail); err != nil {
		f.Close()
		return nil, fmt.Errorf("file store: repair %s: %w", path, err)
	}

	return &FileStore{
		f:    f,
		w:    bufio.NewWriter(f),
		path: path,
		mem:  mem,
	}, nil
}

// logTail is where the last replayed record ends.
type logTail struct {
	offset     int64
	terminated bool
}

// replayFile loads existing records. A malformed final line is a partial
// write from a crash and is skipped; a malformed line elsewhere is an error.
func replayFile(path string, mem *MemoryStore) (logTail, error) {
	tail := logTail{terminated: true}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return tail, nil
	}
	if err != nil {
		return tail, fmt.Errorf("file store: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 64*1024)

	var pending error
	line := 0
	for {
		raw, readErr := r.ReadBytes('\n')
		if len(raw) > 0 {
			line++
			if data := bytes.TrimSpace(raw); len(data) > 0 {
				if pending != nil {
					return tail, pending
				}
				var rec Record
				if err := json.Unmarshal(data, &rec); err != nil {
					pending = fmt.Errorf("file store: %s line %d: %w", path, line, err)
				} else if err := mem.Append(context.Background(), &rec); err != nil {
					pending = fmt.Errorf("file store: %s line %d: %w", path, line, err)
				}
			}
			if pending == nil {
				tail.offset += int64(len(raw))
				tail.terminated = raw[len(raw)-1] == '\n'
			}
		}
		if readErr == io.EOF {
			return tail, nil
		}
		if readErr != nil {
			return tail, fmt.Errorf("file store: read %s: %w", path, readErr)
		}
	}
}

// repairTail drops anything past the last good record and terminates it.
func repairTail(f *os.File, tail logTail) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() > tail.offset {
		if err := f.Truncate(tail.offset); err != nil {
			return err
		}
	}
	if !tail.terminated {
		if _, err := f.Write([]byte{'\n'}); err != nil {
			return err
		}
	}
	return nil
}

// Append writes the record to the log before it becomes visible to reads.
func (s *FileStore) Append(ctx context.Context, r *Record) error {
	if err := r.validate(); err != nil {
		return err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("file store: marshal: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return fmt.Errorf("file store: %s is closed", s.path)
	}
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("file store: write: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("file store: flush: %w", err)
	}

	return s.mem.Append(ctx, r)
}

func (s *FileStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	return s.mem.Recent(ctx, limit)
}

func (s *FileStore) Counts(ctx context.Context) (map[classifier.Category]int, error) {
	return s.mem.Counts(ctx)
}

func (s *FileStore) Health(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return fmt.Errorf("file store: %s is closed", s.path)
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return nil
	}
	f := s.f
	s.f = nil
	if err := s.w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("file store: flush: %w", err)
	}
	return f.Close()
}

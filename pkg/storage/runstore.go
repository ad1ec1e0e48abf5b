package storage

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Run lifecycle states tracked across batch executions. A run found in
// StatusOK is not executed again, which makes a batch resumable after a
// crash or a partial failure.
const (
	StatusPending = "PENDING"
	StatusRunning = "RUNNING"
	StatusOK      = "OK"
	StatusFailed  = "FAILED"
)

// RunStore persists per-run status and summaries for a Monte-Carlo
// batch in a Pebble database under the batch directory.
type RunStore struct {
	db *pebble.DB
}

func NewRunStore(path string) (*RunStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	return &RunStore{db: db}, nil
}

func (s *RunStore) Close() error { return s.db.Close() }

// keys: s:<run-id> status, r:<run-id> summary JSON
func kStatus(runID int) []byte  { return []byte(fmt.Sprintf("s:%05d", runID)) }
func kSummary(runID int) []byte { return []byte(fmt.Sprintf("r:%05d", runID)) }

func (s *RunStore) SetStatus(runID int, status string) error {
	if err := s.db.Set(kStatus(runID), []byte(status), pebble.Sync); err != nil {
		return fmt.Errorf("set status of run %d: %w", runID, err)
	}
	return nil
}

// Status returns the recorded state of a run, or StatusPending when the
// run has never been seen.
func (s *RunStore) Status(runID int) (string, error) {
	val, closer, err := s.db.Get(kStatus(runID))
	if err != nil {
		if err == pebble.ErrNotFound {
			return StatusPending, nil
		}
		return "", fmt.Errorf("get status of run %d: %w", runID, err)
	}
	defer closer.Close()
	return string(val), nil
}

// SaveSummary stores a run's summary as JSON. The value type is left to
// the caller so the store stays decoupled from the simulation package.
func (s *RunStore) SaveSummary(runID int, summary any) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary of run %d: %w", runID, err)
	}
	if err := s.db.Set(kSummary(runID), data, pebble.Sync); err != nil {
		return fmt.Errorf("save summary of run %d: %w", runID, err)
	}
	return nil
}

// Summary unmarshals a stored run summary into out. It reports whether
// a summary was present.
func (s *RunStore) Summary(runID int, out any) (bool, error) {
	val, closer, err := s.db.Get(kSummary(runID))
	if err != nil {
		if err == pebble.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("get summary of run %d: %w", runID, err)
	}
	defer closer.Close()
	if err := json.Unmarshal(val, out); err != nil {
		return false, fmt.Errorf("unmarshal summary of run %d: %w", runID, err)
	}
	return true, nil
}

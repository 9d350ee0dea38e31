package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/tourna-events/internal/event"
)

// Snapshot is one persisted discovery run: events keyed by identifier with
// an updated-at stamp.
type Snapshot struct {
	UpdatedAt string                  `json:"updated_at"`
	Events    map[string]*event.Event `json:"events"`
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Events: make(map[string]*event.Event),
	}
}

// Store handles persistence of discovery snapshots
type Store struct {
	dataDir string
}

// New creates a new Store instance
func New(dataDir string) (*Store, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{
		dataDir: dataDir,
	}, nil
}

// DataDir returns the resolved data directory.
func (s *Store) DataDir() string {
	return s.dataDir
}

func (s *Store) snapshotPath() string {
	return filepath.Join(s.dataDir, "snapshot.json")
}

// LoadSnapshot loads the last discovery snapshot from disk. A missing file
// is not an error; it yields an empty snapshot.
func (s *Store) LoadSnapshot() (*Snapshot, error) {
	data, err := os.ReadFile(s.snapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			return NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	if snapshot.Events == nil {
		snapshot.Events = make(map[string]*event.Event)
	}

	return &snapshot, nil
}

// SaveSnapshot writes a snapshot to disk, stamping it with the current
// time.
func (s *Store) SaveSnapshot(snapshot *Snapshot) error {
	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.WriteFile(s.snapshotPath(), data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// SaveEvents merges a discovery result into the snapshot on disk. Existing
// entries for other events are kept so successive runs accumulate.
func (s *Store) SaveEvents(events []*event.Event) error {
	snapshot, err := s.LoadSnapshot()
	if err != nil {
		return err
	}

	for _, ev := range events {
		if ev.ID == "" {
			continue
		}
		snapshot.Events[ev.ID] = ev
	}

	return s.SaveSnapshot(snapshot)
}

// GetEventByID retrieves an event from the last snapshot, or nil when the
// id was never snapshotted.
func (s *Store) GetEventByID(eventID string) (*event.Event, error) {
	snapshot, err := s.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	return snapshot.Events[eventID], nil
}

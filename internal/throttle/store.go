package throttle

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tidwall/buntdb"
)

// historyKeyPrefix matches the storage key the web form used, extended with
// the device identity.
const historyKeyPrefix = "monfily_form_history:"

// Store persists per-device submission histories.
type Store interface {
	// Load returns the device's history, or a zero history when none exists.
	Load(ctx context.Context, deviceID string) (History, error)
	// Save replaces the device's history.
	Save(ctx context.Context, deviceID string, h History) error
}

// =============================================================================
// BuntDB store
// =============================================================================

// BuntStore keeps histories in an embedded buntdb file, the server-side
// equivalent of the browser's local storage record.
type BuntStore struct {
	db *buntdb.DB
}

// NewBuntStore opens (or creates) the history database at path. Use ":memory:"
// for an ephemeral store.
func NewBuntStore(path string) (*BuntStore, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("throttle: open history db: %w", err)
	}
	return &BuntStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BuntStore) Close() error {
	return s.db.Close()
}

// Load implements Store.
func (s *BuntStore) Load(_ context.Context, deviceID string) (History, error) {
	var raw string
	err := s.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(historyKeyPrefix + deviceID)
		if err != nil {
			return err
		}
		raw = value
		return nil
	})
	if err == buntdb.ErrNotFound {
		return History{}, nil
	}
	if err != nil {
		return History{}, fmt.Errorf("throttle: load history: %w", err)
	}

	var h History
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		// A corrupt record is treated as absent rather than locking the
		// device out of the form entirely.
		return History{}, nil
	}
	return h, nil
}

// Save implements Store.
func (s *BuntStore) Save(_ context.Context, deviceID string, h History) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("throttle: encode history: %w", err)
	}
	err = s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(historyKeyPrefix+deviceID, string(data), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("throttle: save history: %w", err)
	}
	return nil
}

// =============================================================================
// In-memory store
// =============================================================================

// MemoryStore is a map-backed Store for tests and single-run tools.
type MemoryStore struct {
	mu        sync.RWMutex
	histories map[string]History
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{histories: make(map[string]History)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, deviceID string) (History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.histories[deviceID], nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, deviceID string, h History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[deviceID] = h
	return nil
}

var (
	_ Store = (*BuntStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

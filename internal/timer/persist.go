package timer

import (
	"encoding/json"
	"fmt"
)

const snapshotKey = "timer_state"

// KV is the minimal per-user key-value interface the engine persists
// through
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// KVSnapshotStore stores snapshots as JSON under a fixed key
type KVSnapshotStore struct {
	kv KV
}

// NewKVSnapshotStore wraps a per-user key-value store
func NewKVSnapshotStore(kv KV) *KVSnapshotStore {
	return &KVSnapshotStore{kv: kv}
}

// Save writes the snapshot
func (s *KVSnapshotStore) Save(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.kv.Set(snapshotKey, string(data))
}

// Load reads the snapshot; the second return is false when none exists
func (s *KVSnapshotStore) Load() (Snapshot, bool, error) {
	raw, ok, err := s.kv.Get(snapshotKey)
	if err != nil || !ok {
		return Snapshot{}, false, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, true, nil
}

// Clear removes the snapshot
func (s *KVSnapshotStore) Clear() error {
	return s.kv.Delete(snapshotKey)
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory keeps snapshots in process. Values are stored encoded so callers
// never share slices with the store.
type Memory struct {
	mu    sync.Mutex
	users map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, userID string) (Snapshot, bool, error) {
	if err := checkUserID(userID); err != nil {
		return Snapshot{}, false, err
	}
	m.mu.Lock()
	data, ok := m.users[userID]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, false, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return snap, true, nil
}

func (m *Memory) Save(_ context.Context, userID string, snap Snapshot) error {
	if err := checkUserID(userID); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.users[userID] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

package command

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// MaxScriptIDLength bounds the persisted endpoint identifier, matching the
// fixed slot reserved for it in non-volatile storage.
const MaxScriptIDLength = 96

// ScriptStore persists the remote-endpoint identifier (the "script ID") as a
// single null-terminated string at offset 0 of a fixed-size file, so the
// layout survives partial writes the same way an EEPROM slot would.
type ScriptStore struct {
	path string

	mu sync.RWMutex
	id string
}

// NewScriptStore opens the store at path, loading any previously persisted
// identifier. A missing file is not an error: the identifier starts empty and
// telemetry is skipped until one is set.
func NewScriptStore(path string) (*ScriptStore, error) {
	s := &ScriptStore{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read script store: %w", err)
	}

	// Value is everything up to the first null byte
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	s.id = string(data)
	return s, nil
}

// ScriptID returns the current endpoint identifier, empty if unset
func (s *ScriptStore) ScriptID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// SetScriptID persists a new endpoint identifier, replacing the previous one.
// The value is written into the full fixed-size slot, null-terminated.
func (s *ScriptStore) SetScriptID(id string) error {
	if id == "" {
		return fmt.Errorf("script ID must not be empty")
	}
	if len(id) > MaxScriptIDLength {
		return fmt.Errorf("script ID exceeds %d bytes", MaxScriptIDLength)
	}

	slot := make([]byte, MaxScriptIDLength+1)
	copy(slot, id)

	if err := os.WriteFile(s.path, slot, 0600); err != nil {
		return fmt.Errorf("failed to persist script ID: %w", err)
	}

	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
	return nil
}

// Package abistore keeps named ABI documents in local storage.
package abistore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/storage"
)

// Errors.
var (
	ErrInvalidFormat = errors.New("invalid ABI format")
	ErrAbiNotFound   = errors.New("ABI not found")
	ErrEmptyName     = errors.New("ABI name is required")
)

// Manager saves, loads and deletes ABIs. All ABIs live in one JSON object
// (name → raw ABI text) under config.KeySavedABIs.
type Manager struct {
	store storage.Store
	mu    sync.Mutex
}

// NewManager creates a Manager over store.
func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// SaveAbi stores text under name, overwriting any previous entry. text must
// parse as JSON; the array shape is not enforced (see ValidateAbi).
func (m *Manager) SaveAbi(name, text string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if !json.Valid([]byte(text)) {
		return fmt.Errorf("%w: not valid JSON", ErrInvalidFormat)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	abis, err := m.load()
	if err != nil {
		return err
	}
	abis[name] = text
	return m.persist(abis)
}

// GetAbiByName returns the raw text saved under name.
func (m *Manager) GetAbiByName(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	abis, err := m.load()
	if err != nil {
		return "", err
	}
	text, ok := abis[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrAbiNotFound, name)
	}
	return text, nil
}

// DeleteAbi removes name. Deleting a missing name returns ErrAbiNotFound.
func (m *Manager) DeleteAbi(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	abis, err := m.load()
	if err != nil {
		return err
	}
	if _, ok := abis[name]; !ok {
		return fmt.Errorf("%w: %s", ErrAbiNotFound, name)
	}
	delete(abis, name)
	return m.persist(abis)
}

// GetSavedAbisList returns saved names, sorted.
func (m *Manager) GetSavedAbisList() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	abis, err := m.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(abis))
	for name := range abis {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ValidateAbi reports whether text is a JSON array. SaveAbi does not call it.
func ValidateAbi(text string) error {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return fmt.Errorf("%w: ABI must be a JSON array", ErrInvalidFormat)
	}
	return nil
}

// --- internal ---

func (m *Manager) load() (map[string]string, error) {
	raw, ok, err := m.store.GetItem(config.KeySavedABIs)
	if err != nil {
		return nil, fmt.Errorf("loading saved ABIs: %w", err)
	}
	abis := make(map[string]string)
	if !ok || raw == "" {
		return abis, nil
	}
	if err := json.Unmarshal([]byte(raw), &abis); err != nil {
		return nil, fmt.Errorf("parsing saved ABIs: %w", err)
	}
	return abis, nil
}

func (m *Manager) persist(abis map[string]string) error {
	data, err := json.Marshal(abis)
	if err != nil {
		return err
	}
	return m.store.SetItem(config.KeySavedABIs, string(data))
}

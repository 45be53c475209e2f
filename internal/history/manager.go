// Package history records contract calls in local storage, newest first.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/storage"
	"github.com/google/uuid"
)

// Call kinds.
const (
	KindRead  = "read"
	KindWrite = "write"
)

// Entry is one recorded call.
type Entry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Address   string `json:"address"`
	Function  string `json:"function"`
	Params    []any  `json:"params"`
	Result    any    `json:"result"`
	Kind      string `json:"kind,omitempty"`
}

// Time parses the entry timestamp; the zero time is returned when unparsable.
func (e Entry) Time() time.Time {
	t, _ := time.Parse(time.RFC3339, e.Timestamp)
	return t
}

// Manager owns the callHistory document.
type Manager struct {
	store storage.Store
	max   int
	now   func() time.Time
	mu    sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit overrides the maximum number of kept entries.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.max = n
		}
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a history Manager capped at config.MaxHistoryEntries.
func NewManager(store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		max:   config.MaxHistoryEntries,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddToHistory inserts e at the front, drops entries beyond the cap and
// persists. Missing ID and Timestamp are filled in.
func (m *Manager) AddToHistory(e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == "" {
		e.Timestamp = m.now().UTC().Format(time.RFC3339)
	}
	if e.Params == nil {
		e.Params = []any{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.load()
	if err != nil {
		return e, err
	}
	entries = append([]Entry{e}, entries...)
	if len(entries) > m.max {
		entries = entries[:m.max]
	}
	return e, m.persist(entries)
}

// ClearHistory removes every entry.
func (m *Manager) ClearHistory() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persist([]Entry{})
}

// DeleteHistoryItem removes the entry at index. It returns false, and changes
// nothing, when index is out of range.
func (m *Manager) DeleteHistoryItem(index int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.load()
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(entries) {
		return false, nil
	}
	entries = append(entries[:index], entries[index+1:]...)
	return true, m.persist(entries)
}

// GetHistory returns all entries, newest first.
func (m *Manager) GetHistory() ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

// GetRecentHistory returns at most n entries, newest first.
func (m *Manager) GetRecentHistory(n int) ([]Entry, error) {
	entries, err := m.GetHistory()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

// FilterByAddress returns entries for address, compared case-insensitively.
func (m *Manager) FilterByAddress(address string) ([]Entry, error) {
	return m.filter(func(e Entry) bool {
		return strings.EqualFold(e.Address, address)
	})
}

// FilterByFunction returns entries whose function name equals name.
func (m *Manager) FilterByFunction(name string) ([]Entry, error) {
	return m.filter(func(e Entry) bool {
		return e.Function == name
	})
}

// --- internal ---

func (m *Manager) filter(keep func(Entry) bool) ([]Entry, error) {
	entries, err := m.GetHistory()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Manager) load() ([]Entry, error) {
	raw, ok, err := m.store.GetItem(config.KeyCallHistory)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if !ok || raw == "" {
		return []Entry{}, nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}
	return entries, nil
}

func (m *Manager) persist(entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	return m.store.SetItem(config.KeyCallHistory, string(data))
}

package history_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/history"
	"github.com/Mohsinsiddi/abistudio/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addr = "0xAbC1230000000000000000000000000000000000"

func add(t *testing.T, mgr *history.Manager, fn string) history.Entry {
	t.Helper()
	e, err := mgr.AddToHistory(history.Entry{Address: addr, Function: fn, Params: []any{"1"}, Result: "ok"})
	require.NoError(t, err)
	return e
}

func TestAddFillsIDAndTimestamp(t *testing.T) {
	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	mgr := history.NewManager(storage.NewMemoryStore(), history.WithClock(func() time.Time { return fixed }))

	e := add(t, mgr, "balanceOf")
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "2026-10-19T12:00:00Z", e.Timestamp)
	assert.True(t, e.Time().Equal(fixed))
}

func TestHistoryNewestFirst(t *testing.T) {
	mgr := history.NewManager(storage.NewMemoryStore())
	add(t, mgr, "first")
	add(t, mgr, "second")

	entries, err := mgr.GetHistory()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Function)
	assert.Equal(t, "first", entries[1].Function)
}

func TestHistoryCapKeepsMostRecent(t *testing.T) {
	mgr := history.NewManager(storage.NewMemoryStore())

	total := config.MaxHistoryEntries + 17
	for i := range total {
		add(t, mgr, fmt.Sprintf("fn%d", i))
	}

	entries, err := mgr.GetHistory()
	require.NoError(t, err)
	require.Len(t, entries, config.MaxHistoryEntries)
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("fn%d", total-1-i), e.Function)
	}
}

func TestWithLimit(t *testing.T) {
	mgr := history.NewManager(storage.NewMemoryStore(), history.WithLimit(3))
	for i := range 5 {
		add(t, mgr, fmt.Sprintf("fn%d", i))
	}
	entries, _ := mgr.GetHistory()
	assert.Len(t, entries, 3)
	assert.Equal(t, "fn4", entries[0].Function)
}

func TestDeleteHistoryItem(t *testing.T) {
	mgr := history.NewManager(storage.NewMemoryStore())
	add(t, mgr, "a")
	add(t, mgr, "b")
	add(t, mgr, "c")

	ok, err := mgr.DeleteHistoryItem(1)
	require.NoError(t, err)
	assert.True(t, ok)

	entries, _ := mgr.GetHistory()
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].Function)
	assert.Equal(t, "a", entries[1].Function)
}

func TestDeleteHistoryItemOutOfRange(t *testing.T) {
	mgr := history.NewManager(storage.NewMemoryStore())
	add(t, mgr, "a")

	for _, idx := range []int{-1, 1, 99} {
		ok, err := mgr.DeleteHistoryItem(idx)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	entries, _ := mgr.GetHistory()
	assert.Len(t, entries, 1)
}

func TestClearHistory(t *testing.T) {
	mgr := history.NewManager(storage.NewMemoryStore())
	add(t, mgr, "a")
	require.NoError(t, mgr.ClearHistory())

	entries, err := mgr.GetHistory()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGetRecentHistory(t *testing.T) {
	mgr := history.NewManager(storage.NewMemoryStore())
	for i := range 5 {
		add(t, mgr, fmt.Sprintf("fn%d", i))
	}

	recent, err := mgr.GetRecentHistory(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "fn4", recent[0].Function)

	all, _ := mgr.GetRecentHistory(100)
	assert.Len(t, all, 5)

	none, _ := mgr.GetRecentHistory(-3)
	assert.Empty(t, none)
}

func TestFilterByAddressIgnoresCase(t *testing.T) {
	mgr := history.NewManager(storage.NewMemoryStore())
	add(t, mgr, "balanceOf")
	_, err := mgr.AddToHistory(history.Entry{Address: "0x0000000000000000000000000000000000000001", Function: "name"})
	require.NoError(t, err)

	got, err := mgr.FilterByAddress("0xabc1230000000000000000000000000000000000")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "balanceOf", got[0].Function)
}

func TestFilterByFunction(t *testing.T) {
	mgr := history.NewManager(storage.NewMemoryStore())
	add(t, mgr, "balanceOf")
	add(t, mgr, "name")
	add(t, mgr, "balanceOf")

	got, err := mgr.FilterByFunction("balanceOf")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestHistoryPersistsAcrossManagers(t *testing.T) {
	store := storage.NewMemoryStore()
	add(t, history.NewManager(store), "balanceOf")

	entries, err := history.NewManager(store).GetHistory()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []any{"1"}, entries[0].Params)
	assert.Equal(t, "ok", entries[0].Result)
}

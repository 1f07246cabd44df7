package editor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayadmin/homestay-editor/pkg/draftstore"
)

func newTestBridge(t *testing.T, store draftstore.Store, key string) *Bridge {
	b := NewBridge(store, key, BridgeConfig{
		AutosaveDelay:       testAutosaveDelay,
		SavedIndicatorDelay: 40 * time.Millisecond,
		Logger:              quietLogger(),
	})
	t.Cleanup(b.Close)
	return b
}

func snapshotWithTitle(title string) func() Snapshot {
	return func() Snapshot {
		form := DefaultForm()
		form.Title = title
		return Snapshot{Form: form, Rooms: []RoomDraft{}, AvailabilityBlocks: []AvailabilityBlock{}}
	}
}

func TestBridge_LoadRunsOnce(t *testing.T) {
	store := draftstore.NewMemoryStore()
	data, err := json.Marshal(Snapshot{Form: FormState{Title: "Saved"}})
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), createDraftKey, data))

	b := newTestBridge(t, store, createDraftKey)

	snap, ok := b.Load(context.Background())
	require.True(t, ok)
	assert.Equal(t, "Saved", snap.Form.Title)
	assert.Equal(t, StatusDraft, snap.Form.Status, "defaults restored")
	assert.NotNil(t, snap.Form.Tags)
	assert.NotNil(t, snap.Rooms)

	_, ok = b.Load(context.Background())
	assert.False(t, ok)
}

func TestBridge_LoadIgnoresUnreadableDraft(t *testing.T) {
	store := draftstore.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), createDraftKey, []byte("{not json")))

	b := newTestBridge(t, store, createDraftKey)

	_, ok := b.Load(context.Background())
	assert.False(t, ok)
	assert.True(t, b.Loaded())
}

func TestBridge_NoWriteBeforeLoad(t *testing.T) {
	store := newCountingStore()
	b := newTestBridge(t, store, createDraftKey)

	b.Schedule(snapshotWithTitle("too early"))

	assert.Never(t, func() bool { return store.puts.Load() > 0 }, 5*testAutosaveDelay, tick)
}

func TestBridge_BurstProducesOneWrite(t *testing.T) {
	store := newCountingStore()
	b := newTestBridge(t, store, createDraftKey)
	b.Load(context.Background())

	for _, title := range []string{"R", "Ri", "Riv", "Rive", "River"} {
		b.Schedule(snapshotWithTitle(title))
	}

	assert.Eventually(t, func() bool { return store.puts.Load() == 1 }, waitFor, tick)
	assert.Never(t, func() bool { return store.puts.Load() > 1 }, 5*testAutosaveDelay, tick)

	data, err := store.Get(context.Background(), createDraftKey)
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, "River", snap.Form.Title)
	assert.False(t, snap.SavedAt.IsZero())
	assert.Equal(t, snap.SavedAt.UnixNano(), b.SavedAt().UnixNano())
}

func TestBridge_SavedIndicatorClears(t *testing.T) {
	b := newTestBridge(t, draftstore.NewMemoryStore(), createDraftKey)
	b.Load(context.Background())
	assert.False(t, b.ShowSaved())

	b.Schedule(snapshotWithTitle("x"))

	assert.Eventually(t, b.ShowSaved, waitFor, tick)
	assert.Eventually(t, func() bool { return !b.ShowSaved() }, waitFor, tick)
}

func TestBridge_WriteFailureIsSwallowed(t *testing.T) {
	store := draftstore.NewMemoryStore()
	store.MaxBytes = 8
	b := newTestBridge(t, store, createDraftKey)
	b.Load(context.Background())

	b.Schedule(snapshotWithTitle("a title that does not fit"))

	assert.Never(t, b.ShowSaved, 5*testAutosaveDelay, tick)
	assert.False(t, store.Has(createDraftKey))
	assert.True(t, b.SavedAt().IsZero())
}

func TestBridge_ClearCancelsPendingWrite(t *testing.T) {
	store := newCountingStore()
	b := newTestBridge(t, store, createDraftKey)
	b.Load(context.Background())

	b.Flush(snapshotWithTitle("first"))
	require.True(t, store.Has(createDraftKey))

	b.Schedule(snapshotWithTitle("second"))
	require.NoError(t, b.Clear(context.Background()))

	assert.False(t, store.Has(createDraftKey))
	assert.Never(t, func() bool { return store.Has(createDraftKey) }, 5*testAutosaveDelay, tick)
}

func TestBridge_ClearWaitsForRunningWrite(t *testing.T) {
	store := newGatedStore()
	b := newTestBridge(t, store, createDraftKey)
	b.Load(context.Background())

	b.Schedule(snapshotWithTitle("in flight"))
	store.waitStarted(t)

	cleared := make(chan error, 1)
	go func() {
		cleared <- b.Clear(context.Background())
	}()

	select {
	case <-cleared:
		t.Fatal("Clear returned while a write was still running")
	case <-time.After(5 * tick):
	}

	close(store.release)
	require.NoError(t, <-cleared)

	assert.False(t, store.Has(createDraftKey))
	assert.False(t, b.ShowSaved())

	b.Flush(snapshotWithTitle("after clear"))
	assert.False(t, store.Has(createDraftKey))
}

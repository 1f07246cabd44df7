package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stayadmin/homestay-editor/pkg/draftstore"
)

// Default timings for the persistence bridge
const (
	DefaultAutosaveDelay       = 800 * time.Millisecond
	DefaultSavedIndicatorDelay = 2500 * time.Millisecond
	draftWriteTimeout          = 5 * time.Second
)

// Snapshot is the persisted draft of an editing session
type Snapshot struct {
	Form               FormState           `json:"form"`
	Rooms              []RoomDraft         `json:"rooms"`
	AvailabilityBlocks []AvailabilityBlock `json:"availabilityBlocks"`
	SavedAt            time.Time           `json:"savedAt"`
}

// BridgeConfig holds persistence bridge configuration
type BridgeConfig struct {
	AutosaveDelay       time.Duration
	SavedIndicatorDelay time.Duration
	Logger              logrus.FieldLogger
	Now                 func() time.Time
	OnSaved             func(savedAt time.Time) // called after every successful write
}

// Bridge keeps a local backup of in-progress edits.
// Load runs once; writes are refused until it has run so a default form
// can never overwrite a stored draft.
type Bridge struct {
	store          draftstore.Store
	key            string
	debouncer      *Debouncer
	indicatorDelay time.Duration
	logger         logrus.FieldLogger
	now            func() time.Time
	onSaved        func(time.Time)

	// writeMu serializes store writes with Clear
	writeMu sync.Mutex

	mu           sync.Mutex
	loaded       bool
	closed       bool
	savedAt      time.Time
	showSaved    bool
	indicator    *time.Timer
	indicatorGen uint64
}

// NewBridge creates a bridge writing to store under key
func NewBridge(store draftstore.Store, key string, cfg BridgeConfig) *Bridge {
	if cfg.AutosaveDelay <= 0 {
		cfg.AutosaveDelay = DefaultAutosaveDelay
	}
	if cfg.SavedIndicatorDelay <= 0 {
		cfg.SavedIndicatorDelay = DefaultSavedIndicatorDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Bridge{
		store:          store,
		key:            key,
		debouncer:      NewDebouncer(cfg.AutosaveDelay),
		indicatorDelay: cfg.SavedIndicatorDelay,
		logger:         cfg.Logger.WithField("draft_key", key),
		now:            cfg.Now,
		onSaved:        cfg.OnSaved,
	}
}

// Key returns the storage key of this bridge
func (b *Bridge) Key() string {
	return b.key
}

// Load reads the stored draft. Only the first call does any work; later
// calls return false. Read and parse failures are logged and treated as
// "no draft".
func (b *Bridge) Load(ctx context.Context) (Snapshot, bool) {
	b.mu.Lock()
	if b.loaded {
		b.mu.Unlock()
		return Snapshot{}, false
	}
	b.loaded = true
	b.mu.Unlock()

	data, err := b.store.Get(ctx, b.key)
	if errors.Is(err, draftstore.ErrNotFound) {
		return Snapshot{}, false
	}
	if err != nil {
		b.logger.WithError(err).Warn("Failed to read draft, starting from defaults")
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		b.logger.WithError(err).Warn("Failed to parse draft, starting from defaults")
		return Snapshot{}, false
	}
	snap.Form.fillDefaults()
	if snap.Rooms == nil {
		snap.Rooms = []RoomDraft{}
	}
	if snap.AvailabilityBlocks == nil {
		snap.AvailabilityBlocks = []AvailabilityBlock{}
	}

	b.mu.Lock()
	b.savedAt = snap.SavedAt
	b.mu.Unlock()

	b.logger.WithField("saved_at", snap.SavedAt).Info("Draft restored")
	return snap, true
}

// Loaded reports whether Load has run
func (b *Bridge) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// Schedule arms a debounced write. capture is called when the write fires,
// so the latest state is persisted. It does nothing before Load or after Close.
func (b *Bridge) Schedule(capture func() Snapshot) {
	b.mu.Lock()
	ready := b.loaded && !b.closed
	b.mu.Unlock()
	if !ready {
		return
	}

	b.debouncer.Trigger(func() {
		b.write(capture())
	})
}

// Flush cancels the pending write and persists capture() immediately
func (b *Bridge) Flush(capture func() Snapshot) {
	b.mu.Lock()
	ready := b.loaded && !b.closed
	b.mu.Unlock()
	if !ready {
		return
	}

	b.debouncer.Stop()
	b.write(capture())
}

func (b *Bridge) write(snap Snapshot) {
	snap.SavedAt = b.now()
	data, err := json.Marshal(snap)
	if err != nil {
		b.logger.WithError(err).Warn("Failed to serialize draft")
		return
	}

	if err := b.put(data); err != nil {
		if !errors.Is(err, errBridgeClosed) {
			b.logger.WithError(err).Warn("Failed to save draft")
		}
		return
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.savedAt = snap.SavedAt
	b.showSaved = true
	if b.indicator != nil {
		b.indicator.Stop()
	}
	b.indicatorGen++
	gen := b.indicatorGen
	b.indicator = time.AfterFunc(b.indicatorDelay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.indicatorGen == gen {
			b.showSaved = false
			b.indicator = nil
		}
	})
	b.mu.Unlock()

	b.logger.Debug("Draft saved")
	if b.onSaved != nil {
		b.onSaved(snap.SavedAt)
	}
}

// errBridgeClosed marks a write skipped because the bridge was closed
var errBridgeClosed = errors.New("draft bridge is closed")

// put stores data unless the bridge has been closed. The closed check and
// the store write happen under writeMu so Clear cannot run in between.
func (b *Bridge) put(data []byte) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return errBridgeClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), draftWriteTimeout)
	defer cancel()
	return b.store.Put(ctx, b.key, data)
}

// Clear drops any pending write, waits for a running one and deletes the
// stored draft. The bridge accepts no writes afterwards.
func (b *Bridge) Clear(ctx context.Context) error {
	b.debouncer.Stop()
	b.mu.Lock()
	b.closed = true
	b.savedAt = time.Time{}
	b.showSaved = false
	b.mu.Unlock()

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if err := b.store.Delete(ctx, b.key); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}

// SavedAt returns the time of the last successful write or restore
func (b *Bridge) SavedAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.savedAt
}

// ShowSaved reports whether the transient "saved" indicator is visible
func (b *Bridge) ShowSaved() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.showSaved
}

// Close stops all timers; no further writes happen
func (b *Bridge) Close() {
	b.debouncer.Stop()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.indicator != nil {
		b.indicator.Stop()
		b.indicator = nil
	}
	b.indicatorGen++
	b.showSaved = false
}

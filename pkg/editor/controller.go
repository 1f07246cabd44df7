package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stayadmin/homestay-editor/pkg/draftstore"
	"github.com/stayadmin/homestay-editor/pkg/homestayapi"
	"github.com/stayadmin/homestay-editor/pkg/slug"
)

const (
	submitFallbackMessage = "Failed to save homestay"
	listRedirectPath      = "/admin/homestays"
)

var (
	// ErrSubmitBlocked is returned while a save is in flight or the slug is taken
	ErrSubmitBlocked = errors.New("submit is not allowed in the current state")
)

// Submitter persists homestays
type Submitter interface {
	CreateHomestay(ctx context.Context, payload homestayapi.Payload) (*homestayapi.Homestay, error)
	UpdateHomestay(ctx context.Context, id string, payload homestayapi.Payload) (*homestayapi.Homestay, error)
}

// API is the remote surface the controller needs
type API interface {
	SlugSearcher
	Submitter
}

// SubmitError is a failed submit with a message fit for display
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// SubmitResult is returned after a successful create or update
type SubmitResult struct {
	Entity     *homestayapi.Homestay
	RedirectTo string
}

// MergeResult describes what ApplyServerData did
type MergeResult int

const (
	// MergeApplied means the server data replaced the form
	MergeApplied MergeResult = iota
	// MergeKeptDraft means a restored draft was kept and the server data ignored
	MergeKeptDraft
	// MergeAlreadyApplied means server data had already been merged once
	MergeAlreadyApplied
)

func (r MergeResult) String() string {
	switch r {
	case MergeApplied:
		return "applied"
	case MergeKeptDraft:
		return "kept_draft"
	case MergeAlreadyApplied:
		return "already_applied"
	default:
		return fmt.Sprintf("MergeResult(%d)", int(r))
	}
}

// Config holds controller configuration
type Config struct {
	Mode                Mode
	API                 API
	Drafts              draftstore.Store
	Logger              logrus.FieldLogger
	AutosaveDelay       time.Duration
	SlugCheckDelay      time.Duration
	SavedIndicatorDelay time.Duration
	Now                 func() time.Time
	OnChange            func() // called after background state changes (slug status, draft saved)
}

// Controller owns one editing session: the form store, its local draft
// and the remote reconciliation against the admin API.
type Controller struct {
	api      API
	store    *Store
	bridge   *Bridge
	slugs    *SlugChecker
	logger   logrus.FieldLogger
	now      func() time.Time
	onChange func()

	mu            sync.Mutex
	mode          Mode
	mounted       bool
	restored      bool
	serverApplied bool
	slugTouched   bool
	saving        bool
	closed        bool
	lastError     string
}

// NewController creates a controller for one editing session
func NewController(cfg Config) (*Controller, error) {
	if cfg.Mode == nil {
		return nil, errors.New("editor mode is required")
	}
	if cfg.API == nil {
		return nil, errors.New("editor API is required")
	}
	if cfg.Drafts == nil {
		return nil, errors.New("draft store is required")
	}
	if m, ok := cfg.Mode.(EditMode); ok && m.ID == "" {
		return nil, errors.New("edit mode requires an id")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	c := &Controller{
		api:      cfg.API,
		store:    NewStore(),
		logger:   cfg.Logger,
		now:      cfg.Now,
		onChange: cfg.OnChange,
		mode:     cfg.Mode,
		// editing an existing homestay never derives the slug
		slugTouched: isEdit(cfg.Mode),
	}
	c.bridge = NewBridge(cfg.Drafts, DraftKey(cfg.Mode), BridgeConfig{
		AutosaveDelay:       cfg.AutosaveDelay,
		SavedIndicatorDelay: cfg.SavedIndicatorDelay,
		Logger:              cfg.Logger,
		Now:                 cfg.Now,
		OnSaved:             func(time.Time) { c.notify() },
	})
	c.slugs = NewSlugChecker(cfg.API, SlugCheckerConfig{
		Delay:    cfg.SlugCheckDelay,
		Logger:   cfg.Logger,
		OnChange: func(SlugStatus) { c.notify() },
	})
	return c, nil
}

// Mount restores the local draft, if any. Only the first call has an effect.
// It reports whether a draft was restored.
func (c *Controller) Mount(ctx context.Context) bool {
	c.mu.Lock()
	if c.mounted || c.closed {
		restored := c.restored
		c.mu.Unlock()
		return restored
	}
	c.mounted = true

	snap, ok := c.bridge.Load(ctx)
	if ok {
		c.store.replace(snap.Form, snap.Rooms, snap.AvailabilityBlocks)
		c.restored = true
		// a restored slug that no longer follows the title was edited by hand
		if !isEdit(c.mode) && snap.Form.Slug != slug.Normalize(snap.Form.Title) {
			c.slugTouched = true
		}
	}
	mode := c.mode
	current := c.store.form.Slug
	c.mu.Unlock()

	if ok {
		c.slugs.Update(mode, current)
	}
	return ok
}

// ApplyServerData merges a fetched homestay into the form. It runs at most
// once per controller and never overwrites a draft restored by Mount.
func (c *Controller) ApplyServerData(ctx context.Context, h homestayapi.Homestay) MergeResult {
	c.Mount(ctx)

	c.mu.Lock()
	if c.serverApplied || c.closed {
		c.mu.Unlock()
		return MergeAlreadyApplied
	}
	c.serverApplied = true

	learnedOriginal := false
	if m, ok := c.mode.(EditMode); ok && m.OriginalSlug == "" {
		m.OriginalSlug = h.Slug
		c.mode = m
		learnedOriginal = true
	}

	if c.restored {
		mode := c.mode
		current := c.store.form.Slug
		c.mu.Unlock()
		// the check Mount started did not know the original slug yet
		if learnedOriginal {
			c.slugs.Update(mode, current)
		}
		c.logger.WithField("homestay_id", h.ID).Info("Keeping restored draft over server data")
		return MergeKeptDraft
	}

	c.store.replace(FormFromHomestay(h), RoomsFromHomestay(h), BuildInitialAvailability(h.Availability))
	mode := c.mode
	current := c.store.form.Slug
	c.mu.Unlock()

	c.slugs.Update(mode, current)
	c.scheduleAutosave()
	return MergeApplied
}

// SetField replaces one form field. In create mode a title change rewrites
// the slug until the slug has been edited directly.
func (c *Controller) SetField(v FieldValue) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	before := c.store.form.Slug
	c.store.SetField(v)

	switch v.Key() {
	case Slug.Key():
		c.slugTouched = true
	case Title.Key():
		if !c.slugTouched && !isEdit(c.mode) {
			c.store.SetField(Slug.Value(slug.Normalize(c.store.form.Title)))
		}
	}

	after := c.store.form.Slug
	mode := c.mode
	c.mu.Unlock()

	if after != before || v.Key() == Slug.Key() {
		c.slugs.Update(mode, after)
	}
	c.scheduleAutosave()
}

// AddToList adds a trimmed value to a list field
func (c *Controller) AddToList(f ListField, value string) bool {
	return c.mutate(func(s *Store) bool { return s.AddToList(f, value) })
}

// RemoveFromList removes a value from a list field
func (c *Controller) RemoveFromList(f ListField, value string) bool {
	return c.mutate(func(s *Store) bool { return s.RemoveFromList(f, value) })
}

// AddRoom appends a room and returns its client id
func (c *Controller) AddRoom(room RoomDraft) string {
	var id string
	c.mutate(func(s *Store) bool {
		id = s.AddRoom(room)
		return true
	})
	return id
}

// UpdateRoom edits the room with clientID in place
func (c *Controller) UpdateRoom(clientID string, fn func(*RoomDraft)) bool {
	return c.mutate(func(s *Store) bool { return s.UpdateRoom(clientID, fn) })
}

// RemoveRoom deletes the room with clientID
func (c *Controller) RemoveRoom(clientID string) bool {
	return c.mutate(func(s *Store) bool { return s.RemoveRoom(clientID) })
}

// AddBlock appends an availability block and returns its client id
func (c *Controller) AddBlock(block AvailabilityBlock) string {
	var id string
	c.mutate(func(s *Store) bool {
		id = s.AddBlock(block)
		return true
	})
	return id
}

// UpdateBlock edits the block with clientID in place
func (c *Controller) UpdateBlock(clientID string, fn func(*AvailabilityBlock)) bool {
	return c.mutate(func(s *Store) bool { return s.UpdateBlock(clientID, fn) })
}

// RemoveBlock deletes the block with clientID
func (c *Controller) RemoveBlock(clientID string) bool {
	return c.mutate(func(s *Store) bool { return s.RemoveBlock(clientID) })
}

func (c *Controller) mutate(fn func(*Store) bool) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	changed := fn(c.store)
	c.mu.Unlock()

	if changed {
		c.scheduleAutosave()
	}
	return changed
}

func (c *Controller) scheduleAutosave() {
	c.bridge.Schedule(c.snapshot)
}

func (c *Controller) snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Form:               c.store.Form(),
		Rooms:              c.store.Rooms(),
		AvailabilityBlocks: c.store.Blocks(),
	}
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

// SaveDraft writes the local draft immediately
func (c *Controller) SaveDraft() {
	c.bridge.Flush(c.snapshot)
}

// Mode returns the editing mode
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Form returns a copy of the current form
func (c *Controller) Form() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Form()
}

// Rooms returns a copy of the current rooms
func (c *Controller) Rooms() []RoomDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Rooms()
}

// Blocks returns a copy of the current availability blocks
func (c *Controller) Blocks() []AvailabilityBlock {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Blocks()
}

// Payload builds the request body for the current state
func (c *Controller) Payload() homestayapi.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return BuildPayload(c.store.form, c.store.rooms, c.store.blocks)
}

// Restored reports whether Mount restored a local draft
func (c *Controller) Restored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restored
}

// SlugTouched reports whether slug auto-derivation has stopped
func (c *Controller) SlugTouched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slugTouched
}

// SlugStatus returns the state of the uniqueness check
func (c *Controller) SlugStatus() SlugStatus {
	return c.slugs.Status()
}

// Saving reports whether a submit is in flight
func (c *Controller) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// LastError returns the message of the last failed submit
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// ShowSaved reports whether the "saved" indicator is visible
func (c *Controller) ShowSaved() bool {
	return c.bridge.ShowSaved()
}

// SavedAt returns when the local draft was last written
func (c *Controller) SavedAt() time.Time {
	return c.bridge.SavedAt()
}

// CanSubmit reports whether Submit would be attempted
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && !c.saving && c.slugs.Status() != SlugConflict
}

// Submit validates the form and creates or updates the homestay.
// On success the local draft is deleted and the session ends. On failure
// the form is left as is and nothing is retried.
func (c *Controller) Submit(ctx context.Context) (*SubmitResult, error) {
	c.mu.Lock()
	if c.closed || c.saving || c.slugs.Status() == SlugConflict {
		c.mu.Unlock()
		return nil, ErrSubmitBlocked
	}
	if err := c.validate(); err != nil {
		c.lastError = err.Message
		c.mu.Unlock()
		return nil, err
	}
	payload := BuildPayload(c.store.form, c.store.rooms, c.store.blocks)
	mode := c.mode
	c.saving = true
	c.lastError = ""
	c.mu.Unlock()

	var (
		entity *homestayapi.Homestay
		err    error
	)
	if m, ok := mode.(EditMode); ok {
		entity, err = c.api.UpdateHomestay(ctx, m.ID, payload)
	} else {
		entity, err = c.api.CreateHomestay(ctx, payload)
	}

	c.mu.Lock()
	c.saving = false
	if err != nil {
		msg := submitMessage(err)
		c.lastError = msg
		c.mu.Unlock()
		c.logger.WithError(err).WithField("slug", payload.Slug).Warn("Failed to submit homestay")
		return nil, &SubmitError{Message: msg, Err: err}
	}
	c.mu.Unlock()

	if err := c.bridge.Clear(ctx); err != nil {
		c.logger.WithError(err).Warn("Failed to clear draft after submit")
	}
	c.Close()

	c.logger.WithFields(logrus.Fields{
		"homestay_id": entity.ID,
		"slug":        entity.Slug,
	}).Info("Homestay saved")

	return &SubmitResult{
		Entity:     entity,
		RedirectTo: fmt.Sprintf("%s?refresh=%d", listRedirectPath, c.now().UnixMilli()),
	}, nil
}

func (c *Controller) validate() *SubmitError {
	if strings.TrimSpace(c.store.form.Title) == "" {
		return &SubmitError{Message: "Title is required"}
	}
	if strings.TrimSpace(c.store.form.Slug) == "" {
		return &SubmitError{Message: "Slug is required"}
	}
	for i, b := range c.store.blocks {
		days, ok := BlockDays(b.StartDate, b.EndDate)
		if !ok {
			return &SubmitError{Message: fmt.Sprintf("Availability block %d has an invalid date range", i+1)}
		}
		if days > MaxBlockDays {
			return &SubmitError{Message: fmt.Sprintf("Availability block %d is longer than %d days", i+1, MaxBlockDays)}
		}
	}
	return nil
}

// submitMessage picks the server's message, falling back to a generic one
func submitMessage(err error) string {
	var apiErr *homestayapi.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Code != "" {
			return apiErr.Code
		}
	}
	return submitFallbackMessage
}

// Close stops all timers and in-flight requests. The form stays readable.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.bridge.Close()
	c.slugs.Close()
}

package editor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stayadmin/homestay-editor/pkg/homestayapi"
)

// SlugStatus is the state of the remote uniqueness check
type SlugStatus string

// Slug check states
const (
	SlugIdle      SlugStatus = "idle"
	SlugChecking  SlugStatus = "checking"
	SlugAvailable SlugStatus = "available"
	SlugConflict  SlugStatus = "conflict"
)

const (
	DefaultSlugCheckDelay = 400 * time.Millisecond
	slugSearchLimit       = 5
)

// SlugSearcher finds homestays matching a free-text query
type SlugSearcher interface {
	SearchHomestays(ctx context.Context, query string, limit int) ([]homestayapi.Homestay, error)
}

// SlugCheckerConfig holds slug checker configuration
type SlugCheckerConfig struct {
	Delay    time.Duration
	Logger   logrus.FieldLogger
	OnChange func(SlugStatus)
}

// SlugChecker validates slug uniqueness against the server.
// Every Update supersedes the previous one: its timer is reset, its request
// is cancelled and its result can no longer change the status.
type SlugChecker struct {
	searcher  SlugSearcher
	debouncer *Debouncer
	logger    logrus.FieldLogger
	onChange  func(SlugStatus)

	mu     sync.Mutex
	status SlugStatus
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

// NewSlugChecker creates a checker backed by searcher
func NewSlugChecker(searcher SlugSearcher, cfg SlugCheckerConfig) *SlugChecker {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultSlugCheckDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &SlugChecker{
		searcher:  searcher,
		debouncer: NewDebouncer(cfg.Delay),
		logger:    cfg.Logger,
		onChange:  cfg.OnChange,
		status:    SlugIdle,
	}
}

// Status returns the current check state
func (c *SlugChecker) Status() SlugStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Update reacts to a new slug value
func (c *SlugChecker) Update(mode Mode, slug string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.seq++
	seq := c.seq
	c.cancelInFlight()
	changed := c.setStatus(SlugIdle)
	c.mu.Unlock()
	c.notify(changed, SlugIdle)

	if !needsCheck(mode, slug) {
		c.debouncer.Stop()
		return
	}
	c.debouncer.Trigger(func() {
		c.run(mode, slug, seq)
	})
}

func needsCheck(mode Mode, slug string) bool {
	if strings.TrimSpace(slug) == "" {
		return false
	}
	if m, ok := mode.(EditMode); ok && slug == m.OriginalSlug {
		return false
	}
	return true
}

func (c *SlugChecker) run(mode Mode, slug string, seq uint64) {
	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	changed := c.setStatus(SlugChecking)
	c.mu.Unlock()
	c.notify(changed, SlugChecking)

	results, err := c.searcher.SearchHomestays(ctx, slug, slugSearchLimit)
	cancel()

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.cancel = nil

	next := SlugAvailable
	if err != nil {
		c.logger.WithError(err).WithField("slug", slug).Debug("Slug check failed")
		next = SlugIdle
	} else if hasConflict(results, slug, editingID(mode)) {
		next = SlugConflict
	}
	changed = c.setStatus(next)
	c.mu.Unlock()
	c.notify(changed, next)
}

// hasConflict reports whether another entity already uses slug
func hasConflict(results []homestayapi.Homestay, slug, selfID string) bool {
	for _, h := range results {
		if h.Slug == slug && h.ID != selfID {
			return true
		}
	}
	return false
}

func (c *SlugChecker) cancelInFlight() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *SlugChecker) setStatus(s SlugStatus) bool {
	if c.status == s {
		return false
	}
	c.status = s
	return true
}

func (c *SlugChecker) notify(changed bool, s SlugStatus) {
	if changed && c.onChange != nil {
		c.onChange(s)
	}
}

// Close stops the timer and aborts any request in flight
func (c *SlugChecker) Close() {
	c.debouncer.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.seq++
	c.cancelInFlight()
}

package editor

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stayadmin/homestay-editor/pkg/draftstore"
	"github.com/stayadmin/homestay-editor/pkg/homestayapi"
)

const (
	testAutosaveDelay  = 20 * time.Millisecond
	testSlugCheckDelay = 10 * time.Millisecond
	waitFor            = time.Second
	tick               = 2 * time.Millisecond
)

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// countingStore records writes on top of a memory store
type countingStore struct {
	*draftstore.MemoryStore
	puts atomic.Int32
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: draftstore.NewMemoryStore()}
}

func (s *countingStore) Put(ctx context.Context, key string, value []byte) error {
	s.puts.Add(1)
	return s.MemoryStore.Put(ctx, key, value)
}

// gatedStore holds its first Put until release is closed
type gatedStore struct {
	*draftstore.MemoryStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: draftstore.NewMemoryStore(),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (s *gatedStore) Put(ctx context.Context, key string, value []byte) error {
	s.once.Do(func() {
		close(s.started)
		<-s.release
	})
	return s.MemoryStore.Put(ctx, key, value)
}

func (s *gatedStore) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-s.started:
	case <-time.After(waitFor):
		t.Fatal("draft write never started")
	}
}

// fakeAPI is an in-memory stand-in for the admin API
type fakeAPI struct {
	mu       sync.Mutex
	search   func(ctx context.Context, query string) ([]homestayapi.Homestay, error)
	queries  []string
	created  []homestayapi.Payload
	updated  map[string]homestayapi.Payload
	saveErr  error
	saveResp *homestayapi.Homestay
	block    chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updated: make(map[string]homestayapi.Payload)}
}

func (f *fakeAPI) SearchHomestays(ctx context.Context, query string, limit int) ([]homestayapi.Homestay, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	search := f.search
	f.mu.Unlock()

	if search == nil {
		return nil, nil
	}
	return search(ctx, query)
}

func (f *fakeAPI) CreateHomestay(ctx context.Context, payload homestayapi.Payload) (*homestayapi.Homestay, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, payload)
	return f.result(payload, "new-id")
}

func (f *fakeAPI) UpdateHomestay(ctx context.Context, id string, payload homestayapi.Payload) (*homestayapi.Homestay, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = payload
	return f.result(payload, id)
}

func (f *fakeAPI) wait() {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
}

func (f *fakeAPI) result(payload homestayapi.Payload, id string) (*homestayapi.Homestay, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if f.saveResp != nil {
		return f.saveResp, nil
	}
	return &homestayapi.Homestay{ID: id, Title: payload.Title, Slug: payload.Slug}, nil
}

func (f *fakeAPI) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func newTestController(t *testing.T, mode Mode, api *fakeAPI, drafts draftstore.Store) *Controller {
	t.Helper()
	c, err := NewController(Config{
		Mode:           mode,
		API:            api,
		Drafts:         drafts,
		Logger:         quietLogger(),
		AutosaveDelay:  testAutosaveDelay,
		SlugCheckDelay: testSlugCheckDelay,
		Now:            func() time.Time { return time.UnixMilli(1735689600000) },
	})
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

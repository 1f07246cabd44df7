package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayadmin/homestay-editor/pkg/homestayapi"
)

func newTestSlugChecker(t *testing.T, api *fakeAPI) *SlugChecker {
	c := NewSlugChecker(api, SlugCheckerConfig{Delay: testSlugCheckDelay, Logger: quietLogger()})
	t.Cleanup(c.Close)
	return c
}

func TestSlugChecker_AvailableAndConflict(t *testing.T) {
	api := newFakeAPI()
	api.search = func(ctx context.Context, query string) ([]homestayapi.Homestay, error) {
		if query == "taken" {
			return []homestayapi.Homestay{{ID: "other", Slug: "taken"}}, nil
		}
		return []homestayapi.Homestay{{ID: "other", Slug: query + "-2"}}, nil
	}
	c := newTestSlugChecker(t, api)

	c.Update(CreateMode{}, "free")
	assert.Eventually(t, func() bool { return c.Status() == SlugAvailable }, waitFor, tick)

	c.Update(CreateMode{}, "taken")
	assert.Equal(t, SlugIdle, c.Status(), "status resets while waiting")
	assert.Eventually(t, func() bool { return c.Status() == SlugConflict }, waitFor, tick)
}

func TestSlugChecker_SkipsEmptyAndOriginalSlug(t *testing.T) {
	api := newFakeAPI()
	c := newTestSlugChecker(t, api)

	c.Update(CreateMode{}, "  ")
	c.Update(EditMode{ID: "h1", OriginalSlug: "riverside"}, "riverside")

	assert.Never(t, func() bool { return api.queryCount() > 0 }, 50*testSlugCheckDelay, tick)
	assert.Equal(t, SlugIdle, c.Status())
}

func TestSlugChecker_EditModeExcludesSelf(t *testing.T) {
	api := newFakeAPI()
	api.search = func(ctx context.Context, query string) ([]homestayapi.Homestay, error) {
		return []homestayapi.Homestay{{ID: "h1", Slug: query}}, nil
	}
	c := newTestSlugChecker(t, api)

	c.Update(EditMode{ID: "h1", OriginalSlug: "old-slug"}, "new-slug")
	assert.Eventually(t, func() bool { return c.Status() == SlugAvailable }, waitFor, tick)

	c.Update(CreateMode{}, "new-slug")
	assert.Eventually(t, func() bool { return c.Status() == SlugConflict }, waitFor, tick)
}

func TestSlugChecker_LatestRequestWins(t *testing.T) {
	api := newFakeAPI()
	release := make(chan struct{})
	firstCtx := make(chan context.Context, 1)
	api.search = func(ctx context.Context, query string) ([]homestayapi.Homestay, error) {
		if query == "alpha" {
			firstCtx <- ctx
			<-release
			// a slow server answers even though the request was abandoned
			return []homestayapi.Homestay{{ID: "other", Slug: "alpha"}}, nil
		}
		return nil, nil
	}
	c := newTestSlugChecker(t, api)

	c.Update(CreateMode{}, "alpha")
	var ctxA context.Context
	select {
	case ctxA = <-firstCtx:
	case <-time.After(waitFor):
		t.Fatal("first request was never issued")
	}
	assert.Equal(t, SlugChecking, c.Status())

	c.Update(CreateMode{}, "beta")
	require.Error(t, ctxA.Err(), "superseded request is cancelled")

	assert.Eventually(t, func() bool { return c.Status() == SlugAvailable }, waitFor, tick)
	close(release)
	assert.Never(t, func() bool { return c.Status() != SlugAvailable }, 30*testSlugCheckDelay, tick)
}

func TestSlugChecker_TransportErrorReturnsToIdle(t *testing.T) {
	api := newFakeAPI()
	api.search = func(ctx context.Context, query string) ([]homestayapi.Homestay, error) {
		return nil, errors.New("connection refused")
	}
	c := newTestSlugChecker(t, api)

	c.Update(CreateMode{}, "anything")
	assert.Eventually(t, func() bool { return api.queryCount() == 1 }, waitFor, tick)
	assert.Eventually(t, func() bool { return c.Status() == SlugIdle }, waitFor, tick)
}

func TestSlugChecker_CloseAbortsInFlight(t *testing.T) {
	api := newFakeAPI()
	started := make(chan struct{})
	aborted := make(chan struct{})
	api.search = func(ctx context.Context, query string) ([]homestayapi.Homestay, error) {
		close(started)
		<-ctx.Done()
		close(aborted)
		return nil, ctx.Err()
	}
	c := NewSlugChecker(api, SlugCheckerConfig{Delay: testSlugCheckDelay, Logger: quietLogger()})

	c.Update(CreateMode{}, "slow")
	<-started
	c.Close()

	select {
	case <-aborted:
	case <-time.After(waitFor):
		t.Fatal("in-flight request was not cancelled")
	}

	c.Update(CreateMode{}, "ignored")
	assert.Never(t, func() bool { return api.queryCount() > 1 }, 20*testSlugCheckDelay, tick)
}

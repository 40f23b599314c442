package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func counting(n *atomic.Int32, value any) FetchFunc {
	return func(ctx context.Context) (any, error) {
		n.Add(1)
		return value, nil
	}
}

func TestFetch_ConcurrentCallersShareOneRequest(t *testing.T) {
	var requests atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
		io.WriteString(w, "worlds")
	}))
	defer srv.Close()

	fetch := func(ctx context.Context) (any, error) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		resp, err := srv.Client().Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		return string(b), err
	}

	c := New(Options{})
	key := Key{"worlds", ""}

	const callers = 10
	var wg sync.WaitGroup
	results := make([]any, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Fetch(context.Background(), key, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	require.Eventually(t, func() bool { return requests.Load() == 1 }, time.Second, time.Millisecond)
	// Give stragglers a chance to join the flight before it completes.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), requests.Load())
	for _, v := range results {
		assert.Equal(t, "worlds", v)
	}
	srv.CloseClientConnections()
}

func TestFetch_FreshEntryIsServedFromCache(t *testing.T) {
	var n atomic.Int32
	c := New(Options{})
	key := Key{"world", "w-1"}

	for i := 0; i < 3; i++ {
		v, err := c.Fetch(context.Background(), key, counting(&n, "Gardeners"))
		require.NoError(t, err)
		assert.Equal(t, "Gardeners", v)
	}
	assert.Equal(t, int32(1), n.Load())

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	var n atomic.Int32
	c := New(Options{})
	ctx := context.Background()

	_, _ = c.Fetch(ctx, Key{"posts", "w-1"}, counting(&n, 1))
	_, _ = c.Fetch(ctx, Key{"posts", "w-2"}, counting(&n, 1))
	_, _ = c.Fetch(ctx, Key{"proposals", "w-1"}, counting(&n, 1))
	require.Equal(t, int32(3), n.Load())

	c.Invalidate(Key{"posts", "w-1"})
	assert.True(t, c.Observe(Key{"posts", "w-1"}).Stale)
	assert.False(t, c.Observe(Key{"posts", "w-2"}).Stale)
	assert.NotNil(t, c.Observe(Key{"posts", "w-1"}).Data, "stale data stays readable")

	_, _ = c.Fetch(ctx, Key{"posts", "w-1"}, counting(&n, 2))
	assert.Equal(t, int32(4), n.Load())
	assert.Equal(t, 2, c.Observe(Key{"posts", "w-1"}).Data)

	assert.Equal(t, 2, c.InvalidatePrefix(Key{"posts"}))
	assert.False(t, c.Observe(Key{"proposals", "w-1"}).Stale)
}

func TestFetch_ErrorsAreNotRetriedByDefault(t *testing.T) {
	var calls atomic.Int32
	var reported []string
	c := New(Options{OnError: func(key Key, err error) {
		reported = append(reported, fmt.Sprintf("%v: %v", []string(key), err))
	}})

	boom := errors.New("boom")
	_, err := c.Fetch(context.Background(), Key{"me"}, func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"[me]: boom"}, reported)

	s := c.Observe(Key{"me"})
	assert.ErrorIs(t, s.Err, boom)
	assert.False(t, s.Loading)
	assert.False(t, s.Fresh())
}

func TestFetch_RetryWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	c := New(Options{Retry: 2})

	v, err := c.Fetch(context.Background(), Key{"feed"}, func(ctx context.Context) (any, error) {
		if calls.Add(1) < 3 {
			return nil, errors.New("flaky")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_LastFetchWins(t *testing.T) {
	c := New(Options{})
	key := Key{"world", "w-1"}
	ctx := context.Background()

	_, _ = c.Fetch(ctx, key, func(context.Context) (any, error) { return "old", nil })
	c.Invalidate(key)
	_, _ = c.Fetch(ctx, key, func(context.Context) (any, error) { return "new", nil })
	assert.Equal(t, "new", c.Observe(key).Data)
}

func TestFetch_CancelledCallerKeepsPreviousData(t *testing.T) {
	c := New(Options{})
	key := Key{"members", "w-1"}
	_, _ = c.Fetch(context.Background(), key, func(context.Context) (any, error) { return "cached", nil })
	c.Invalidate(key)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) { return nil, ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)

	require.Eventually(t, func() bool { return !c.Observe(key).Loading }, time.Second, time.Millisecond)
	s := c.Observe(key)
	assert.Equal(t, "cached", s.Data)
	assert.NoError(t, s.Err)
}

func TestSubscribe(t *testing.T) {
	c := New(Options{})
	ch, cancel := c.Subscribe(Key{"posts"})

	_, _ = c.Fetch(context.Background(), Key{"posts", "w-1"}, func(context.Context) (any, error) { return 1, nil })
	_, _ = c.Fetch(context.Background(), Key{"me"}, func(context.Context) (any, error) { return 1, nil })
	c.Invalidate(Key{"posts", "w-1"})
	cancel()

	var got []string
	for k := range ch {
		got = append(got, k.String())
	}
	// loading, stored, invalidated
	assert.Equal(t, []string{"posts\x1fw-1", "posts\x1fw-1", "posts\x1fw-1"}, got)
	cancel()
}

func TestGetTyped(t *testing.T) {
	c := New(Options{})
	type world struct{ Name string }

	w, err := Get(context.Background(), c, Key{"world", "w-1"}, func(context.Context) (world, error) {
		return world{Name: "Makers"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Makers", w.Name)

	cached, ok := Data[world](c, Key{"world", "w-1"})
	assert.True(t, ok)
	assert.Equal(t, w, cached)

	c.Clear()
	assert.Zero(t, c.Stats().Entries)
}

func blocking(calls *atomic.Int32, started chan<- struct{}, release <-chan struct{}, value any) FetchFunc {
	return func(ctx context.Context) (any, error) {
		calls.Add(1)
		started <- struct{}{}
		select {
		case <-release:
			return value, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func TestInvalidate_DuringFetchKeepsEntryStale(t *testing.T) {
	var calls atomic.Int32
	c := New(Options{})
	key := Key{"posts", "w-1"}
	started := make(chan struct{}, 1)
	release := make(chan struct{})

	done := make(chan any)
	go func() {
		v, _ := c.Fetch(context.Background(), key, blocking(&calls, started, release, "old"))
		done <- v
	}()
	<-started

	assert.Equal(t, 1, c.InvalidatePrefix(Key{"posts", "w-1"}))
	close(release)
	assert.Equal(t, "old", <-done)

	s := c.Observe(key)
	assert.True(t, s.Stale, "a read that began before the write must not count as fresh")
	assert.False(t, s.Fresh())

	v, err := c.Fetch(context.Background(), key, counting(&calls, "new"))
	require.NoError(t, err)
	assert.Equal(t, "new", v)
	assert.Equal(t, int32(2), calls.Load())
	assert.False(t, c.Observe(key).Stale)
}

func TestInvalidate_LaterCallersStartTheirOwnFetch(t *testing.T) {
	var calls atomic.Int32
	c := New(Options{})
	key := Key{"feed"}
	started := make(chan struct{}, 1)
	release := make(chan struct{})

	done := make(chan any)
	go func() {
		v, _ := c.Fetch(context.Background(), key, blocking(&calls, started, release, "old"))
		done <- v
	}()
	<-started

	c.Invalidate(key)
	v, err := c.Fetch(context.Background(), key, counting(&calls, "new"))
	require.NoError(t, err)
	assert.Equal(t, "new", v)

	close(release)
	assert.Equal(t, "old", <-done)

	s := c.Observe(key)
	assert.Equal(t, "new", s.Data, "the older fetch finishing late must not overwrite newer data")
	assert.False(t, s.Loading)
	assert.True(t, s.Fresh())
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_SharedCallSurvivesFirstCallerLeaving(t *testing.T) {
	var calls atomic.Int32
	c := New(Options{})
	key := Key{"members", "w-1"}
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	fetch := blocking(&calls, started, release, "members")

	ctx1, cancel1 := context.WithCancel(context.Background())
	errA := make(chan error)
	go func() {
		_, err := c.Fetch(ctx1, key, fetch)
		errA <- err
	}()
	<-started

	type result struct {
		v   any
		err error
	}
	resB := make(chan result)
	go func() {
		v, err := c.Fetch(context.Background(), key, fetch)
		resB <- result{v, err}
	}()
	// B is parked on the shared call once the waiter count reaches two.
	require.Eventually(t, func() bool {
		c.mu.RLock()
		defer c.mu.RUnlock()
		f := c.flights[key.String()]
		return f != nil && f.waiters == 2
	}, time.Second, time.Millisecond)

	cancel1()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "members", b.v)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, c.Observe(key).Fresh())
}

func TestFetch_LastCallerLeavingCancelsSharedCall(t *testing.T) {
	c := New(Options{})
	key := Key{"proposals", "w-1"}
	cancelled := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error)
	go func() {
		_, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		})
		errc <- err
	}()

	require.Eventually(t, func() bool { return c.Observe(key).Loading }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
	<-cancelled
	require.Eventually(t, func() bool { return !c.Observe(key).Loading }, time.Second, time.Millisecond)
}

func TestClear_DiscardsFetchStartedBefore(t *testing.T) {
	var calls atomic.Int32
	c := New(Options{})
	key := Key{"me"}
	started := make(chan struct{}, 1)
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		_, _ = c.Fetch(context.Background(), key, blocking(&calls, started, release, "alice"))
		close(done)
	}()
	<-started

	c.Clear()
	close(release)
	<-done

	_, ok := Data[string](c, key)
	assert.False(t, ok, "data from the previous session must not come back")
	assert.Zero(t, c.Stats().Entries)
}

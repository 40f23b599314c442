package mutation

import (
	"context"
	"errors"
	"testing"

	"eudaimonia/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postIn struct{ WorldID, Content string }

func TestMutation_SuccessInvalidatesKeys(t *testing.T) {
	c := cache.New(cache.Options{})
	ctx := context.Background()

	fetches := 0
	list := func(context.Context) (any, error) { fetches++; return fetches, nil }
	_, _ = c.Fetch(ctx, cache.Key{"posts", "w-1"}, list)
	_, _ = c.Fetch(ctx, cache.Key{"posts", "w-2"}, list)
	_, _ = c.Fetch(ctx, cache.Key{"feed"}, list)

	m := New(c,
		func(ctx context.Context, in postIn) (string, error) { return "p-1", nil },
		func(in postIn, _ string) cache.Key { return cache.Key{"posts", in.WorldID} },
		Static[postIn, string]("feed"),
	)
	assert.Equal(t, Idle, m.State().Status)

	out, err := m.Run(ctx, postIn{WorldID: "w-1", Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "p-1", out)

	st := m.State()
	assert.Equal(t, Success, st.Status)
	assert.Equal(t, "p-1", st.Result)

	assert.True(t, c.Observe(cache.Key{"posts", "w-1"}).Stale)
	assert.True(t, c.Observe(cache.Key{"feed"}).Stale)
	assert.False(t, c.Observe(cache.Key{"posts", "w-2"}).Stale)

	v, _ := c.Fetch(ctx, cache.Key{"posts", "w-1"}, list)
	assert.Equal(t, 4, v, "dependent key is refetched")

	m.Reset()
	assert.Equal(t, Idle, m.State().Status)
}

func TestMutation_ErrorKeepsCache(t *testing.T) {
	c := cache.New(cache.Options{})
	ctx := context.Background()
	_, _ = c.Fetch(ctx, cache.Key{"votes", "p-1"}, func(context.Context) (any, error) { return 0, nil })

	boom := errors.New("Already voted on this proposal")
	m := New(c,
		func(ctx context.Context, choice string) (struct{}, error) { return struct{}{}, boom },
		Static[string, struct{}]("votes", "p-1"),
	)

	_, err := m.Run(ctx, "agree")
	assert.ErrorIs(t, err, boom)
	st := m.State()
	assert.Equal(t, Error, st.Status)
	assert.ErrorIs(t, st.Err, boom)
	assert.Equal(t, "error", st.Status.String())
	assert.False(t, c.Observe(cache.Key{"votes", "p-1"}).Stale)
}

func TestMutation_PendingWhileInFlight(t *testing.T) {
	c := cache.New(cache.Options{})
	entered := make(chan struct{})
	release := make(chan struct{})

	m := New(c, func(ctx context.Context, in int) (int, error) {
		close(entered)
		<-release
		return in * 2, nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.Run(context.Background(), 21)
	}()

	<-entered
	assert.Equal(t, Pending, m.State().Status)
	close(release)
	<-done
	assert.Equal(t, 42, m.State().Result)
}

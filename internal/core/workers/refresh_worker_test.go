package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna11/ReadMe3D/internal/core/domain"
)

type fakeSource struct {
	mu      sync.Mutex
	fetched []string
	fail    map[string]error
	done    chan string
}

func newFakeSource() *fakeSource {
	return &fakeSource{fail: map[string]error{}, done: make(chan string, 16)}
}

func (s *fakeSource) FetchCalendar(ctx context.Context, username string) (*domain.Calendar, error) {
	s.mu.Lock()
	s.fetched = append(s.fetched, username)
	err := s.fail[username]
	s.mu.Unlock()

	defer func() { s.done <- username }()
	if err != nil {
		return nil, err
	}
	return &domain.Calendar{Username: username, Total: 1}, nil
}

type fakeInvalidator struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, username)
	return nil
}

func (f *fakeInvalidator) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

type countingRecorder struct {
	mu           sync.Mutex
	ok, failures int
}

func (c *countingRecorder) Refresh(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failures++
		return
	}
	c.ok++
}

func waitFor(t *testing.T, ch <-chan string, n int) []string {
	t.Helper()
	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case u := <-ch:
			got = append(got, u)
		case <-timeout:
			t.Fatalf("timed out after %d of %d fetches", len(got), n)
		}
	}
	return got
}

func TestRefreshWorker_PeriodicSweep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newFakeSource()
	inv := &fakeInvalidator{}
	w := NewRefreshWorker(src, []string{"octocat", "mna11"}, time.Hour).WithInvalidator(inv)
	w.Start(ctx)

	got := waitFor(t, src.done, 2)
	assert.ElementsMatch(t, []string{"octocat", "mna11"}, got)

	assert.Eventually(t, func() bool { return len(inv.snapshot()) == 2 }, time.Second, 10*time.Millisecond)
}

func TestRefreshWorker_OnDemand(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newFakeSource()
	src.fail["ghost"] = domain.ErrUserNotFound
	rec := &countingRecorder{}
	inv := &fakeInvalidator{}
	w := NewRefreshWorker(src, nil, 0).WithInvalidator(inv).WithRecorder(rec)
	w.Start(ctx)

	require.True(t, w.Enqueue("OctoCat"))
	require.True(t, w.Enqueue("ghost"))

	got := waitFor(t, src.done, 2)
	assert.Equal(t, []string{"octocat", "ghost"}, got)

	assert.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return rec.ok == 1 && rec.failures == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"octocat"}, inv.snapshot())
}

func TestRefreshWorker_InvalidUsernameIsSkipped(t *testing.T) {
	src := newFakeSource()
	rec := &countingRecorder{}
	w := NewRefreshWorker(src, nil, 0).WithRecorder(rec)

	w.processJob(context.Background(), RefreshJob{Username: "not valid"})

	assert.Empty(t, src.fetched)
	assert.Equal(t, 1, rec.failures)
}

func TestRefreshWorker_QueueFullDrops(t *testing.T) {
	w := NewRefreshWorker(newFakeSource(), nil, 0)

	for i := 0; i < queueSize; i++ {
		require.True(t, w.Enqueue("octocat"))
	}
	assert.False(t, w.Enqueue("octocat"))
}

func TestRefreshWorker_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := newFakeSource()
	src.fail["octocat"] = errors.New("boom")
	w := NewRefreshWorker(src, nil, 0)
	w.Start(ctx)
	cancel()

	time.Sleep(20 * time.Millisecond)
	// Jobs queued after shutdown stay queued.
	require.True(t, w.Enqueue("octocat"))
	select {
	case <-src.done:
		t.Fatal("worker processed a job after cancellation")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRefreshWorker_StartDoesNotBlock(t *testing.T) {
	src := newFakeSource()
	w := NewRefreshWorker(src, []string{"octocat"}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	returned := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Start should return while the worker keeps running")
	}

	select {
	case name := <-src.done:
		assert.Equal(t, "octocat", name)
	case <-time.After(2 * time.Second):
		t.Fatal("initial sweep did not run")
	}
}

package workers

import (
	"context"
	"log"
	"time"

	"github.com/mna11/ReadMe3D/internal/core/domain"
)

const queueSize = 100

type Invalidator interface {
	Invalidate(ctx context.Context, username string) error
}

type Recorder interface {
	Refresh(err error)
}

type RefreshJob struct {
	Username string
}

// RefreshWorker keeps snapshots of a fixed set of users warm. Fetches go
// through an archiving source so every success is stored.
type RefreshWorker struct {
	source      domain.ActivitySource
	invalidator Invalidator
	recorder    Recorder
	usernames   []string
	interval    time.Duration
	timeout     time.Duration
	jobs        chan RefreshJob
}

func NewRefreshWorker(source domain.ActivitySource, usernames []string, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		source:    source,
		usernames: usernames,
		interval:  interval,
		timeout:   15 * time.Second,
		jobs:      make(chan RefreshJob, queueSize),
	}
}

// WithInvalidator drops the cached calendar after each successful refresh.
func (w *RefreshWorker) WithInvalidator(inv Invalidator) *RefreshWorker {
	w.invalidator = inv
	return w
}

func (w *RefreshWorker) WithRecorder(rec Recorder) *RefreshWorker {
	w.recorder = rec
	return w
}

// Start runs the worker until ctx is done. A non-positive interval disables
// the periodic sweep and leaves only on-demand jobs.
func (w *RefreshWorker) Start(ctx context.Context) {
	go func() {
		log.Printf("[WORKER] Refresh worker started for %d users", len(w.usernames))

		var tick <-chan time.Time
		if w.interval > 0 {
			ticker := time.NewTicker(w.interval)
			defer ticker.Stop()
			tick = ticker.C
			w.EnqueueAll()
		}

		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-tick:
				w.EnqueueAll()
			case <-ctx.Done():
				log.Println("[WORKER] Refresh worker shutting down...")
				return
			}
		}
	}()
}

func (w *RefreshWorker) EnqueueAll() {
	for _, u := range w.usernames {
		w.Enqueue(u)
	}
}

// Enqueue never blocks, it reports false when the job was dropped.
func (w *RefreshWorker) Enqueue(username string) bool {
	select {
	case w.jobs <- RefreshJob{Username: username}:
		return true
	default:
		log.Printf("[WORKER] Queue full! Dropping refresh for %s", username)
		return false
	}
}

func (w *RefreshWorker) processJob(ctx context.Context, job RefreshJob) {
	login, err := domain.NormalizeUsername(job.Username)
	if err != nil {
		log.Printf("[WORKER] Skipping refresh: %v", err)
		w.record(err)
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	cal, err := w.source.FetchCalendar(fetchCtx, login)
	w.record(err)
	if err != nil {
		log.Printf("[WORKER] Refresh of %s failed: %v", login, err)
		return
	}

	if w.invalidator != nil {
		if err := w.invalidator.Invalidate(ctx, login); err != nil {
			log.Printf("[WORKER] Cache invalidation for %s failed: %v", login, err)
		}
	}
	log.Printf("[WORKER] Refreshed %s: %d days, total %d", login, len(cal.Days), cal.Total)
}

func (w *RefreshWorker) record(err error) {
	if w.recorder != nil {
		w.recorder.Refresh(err)
	}
}

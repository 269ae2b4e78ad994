package archive

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Archiver writes records to a Store from a single background worker.
// Submit never blocks; records are dropped when the queue is full.
type Archiver struct {
	store   Store
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex // Protects closed and sends on queue
	closed  bool
	queue   chan *Record
	done    chan struct{}
	stored  atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

// ArchiverOption configures an Archiver.
type ArchiverOption func(*Archiver)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) ArchiverOption {
	return func(a *Archiver) {
		a.logger = logger
	}
}

// WithQueueSize sets how many records may wait for the worker.
// Default: 1024.
func WithQueueSize(n int) ArchiverOption {
	return func(a *Archiver) {
		if n > 0 {
			a.queue = make(chan *Record, n)
		}
	}
}

// WithPutTimeout bounds each Store.Put. Default: 30 seconds.
func WithPutTimeout(d time.Duration) ArchiverOption {
	return func(a *Archiver) {
		a.timeout = d
	}
}

// NewArchiver starts a worker writing to store.
func NewArchiver(store Store, opts ...ArchiverOption) *Archiver {
	a := &Archiver{
		store:   store,
		logger:  slog.Default(),
		timeout: 30 * time.Second,
		queue:   make(chan *Record, 1024),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	go a.run()
	return a
}

func (a *Archiver) run() {
	defer close(a.done)

	for r := range a.queue {
		ctx := context.Background()
		var cancel context.CancelFunc = func() {}
		if a.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, a.timeout)
		}
		key, err := a.store.Put(ctx, r)
		cancel()

		if err != nil {
			a.failed.Add(1)
			a.logger.Error("archive put failed",
				"session_id", r.SessionID,
				"container_id", r.ContainerID,
				"error", err)
			continue
		}
		a.stored.Add(1)
		a.logger.Debug("payload archived", "key", key, "bytes", len(r.Payload))
	}
}

// Submit queues r for writing. It reports false if the record was dropped
// because the queue is full or the archiver is closed.
func (a *Archiver) Submit(r *Record) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		a.dropped.Add(1)
		return false
	}
	select {
	case a.queue <- r:
		return true
	default:
		a.dropped.Add(1)
		a.logger.Warn("archive queue full, dropping payload", "session_id", r.SessionID)
		return false
	}
}

// Close stops accepting records and waits for queued ones to be written.
// It is safe to call more than once.
func (a *Archiver) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	<-a.done
	return nil
}

// ArchiverStats is a snapshot of archiver counters.
type ArchiverStats struct {
	Stored  uint64
	Failed  uint64
	Dropped uint64
}

// Stats returns the current counters.
func (a *Archiver) Stats() ArchiverStats {
	return ArchiverStats{
		Stored:  a.stored.Load(),
		Failed:  a.failed.Load(),
		Dropped: a.dropped.Load(),
	}
}

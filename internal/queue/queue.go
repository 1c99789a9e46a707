// Package queue delivers domain events asynchronously: a buffered backlog
// drained by a broker into an autoscaled worker pool.
package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/obs"
)

// Queue is an unbounded event backlog feeding a buffered output channel.
type Queue struct {
	mu           sync.Mutex
	backlog      []model.Event
	notify       chan struct{}
	out          chan model.Event
	shuttingDown atomic.Bool

	enqueued  atomic.Uint64
	processed atomic.Uint64
}

// Stats is a point-in-time view of the queue counters.
type Stats struct {
	Enqueued  uint64 `json:"events_enqueued"`
	Processed uint64 `json:"events_processed"`
	Backlog   int    `json:"backlog_size"`
	Depth     int    `json:"queue_depth"`
}

// Idle reports whether every enqueued event has been handled.
func (s Stats) Idle() bool {
	return s.Backlog == 0 && s.Depth == 0 && s.Enqueued == s.Processed
}

// New creates a queue whose delivery channel buffers outBuffer events.
func New(outBuffer int) *Queue {
	if outBuffer <= 0 {
		outBuffer = 64
	}
	return &Queue{
		notify: make(chan struct{}, 1),
		out:    make(chan model.Event, outBuffer),
	}
}

// Start runs the broker loop until ctx is done.
func (q *Queue) Start(ctx context.Context, highWatermark int) {
	go q.broker(ctx, highWatermark)
}

func (q *Queue) broker(ctx context.Context, highWatermark int) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		q.flush()
		if highWatermark > 0 {
			if sz := q.BacklogSize(); sz > highWatermark {
				obs.Logger.Warn("event_backlog_high", "backlog_size", sz, "high_watermark", highWatermark)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		case <-ticker.C:
		}
	}
}

// flush moves backlog items into the output buffer while it has room.
func (q *Queue) flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.backlog) > 0 && len(q.out) < cap(q.out) {
		q.out <- q.backlog[0]
		q.backlog = q.backlog[1:]
	}
}

// Enqueue never blocks. It returns false once intake is closed.
func (q *Queue) Enqueue(ev model.Event) bool {
	if q.shuttingDown.Load() {
		return false
	}
	q.enqueued.Add(1)
	q.mu.Lock()
	q.backlog = append(q.backlog, ev)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Out exposes the output channel of events.
func (q *Queue) Out() <-chan model.Event { return q.out }

// BacklogSize returns the number of events waiting in the backlog.
func (q *Queue) BacklogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Depth is backlog plus buffered output items.
func (q *Queue) Depth() int {
	q.mu.Lock()
	bl := len(q.backlog)
	q.mu.Unlock()
	return bl + len(q.out)
}

// MarkProcessed increases the processed counter.
func (q *Queue) MarkProcessed() { q.processed.Add(1) }

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Enqueued:  q.enqueued.Load(),
		Processed: q.processed.Load(),
		Backlog:   q.BacklogSize(),
		Depth:     q.Depth(),
	}
}

// CloseIntake disallows future enqueues.
func (q *Queue) CloseIntake() { q.shuttingDown.Store(true) }

// IsShuttingDown reports whether intake has been closed.
func (q *Queue) IsShuttingDown() bool { return q.shuttingDown.Load() }

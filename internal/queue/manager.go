package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/inventory-register-service/internal/config"
	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/obs"
)

// Handler consumes delivered events. It is called from several workers at
// once and must be safe for concurrent use.
type Handler interface {
	Handle(ev model.Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev model.Event)

// Handle calls f(ev).
func (f HandlerFunc) Handle(ev model.Event) { f(ev) }

// Manager publishes events and runs the workers that deliver them.
type Manager struct {
	cfg     config.Config
	q       *Queue
	handler Handler
	seq     atomic.Uint64
	now     func() time.Time
	ctx     context.Context
	cancel  context.CancelFunc

	mu            sync.Mutex
	workerCancels []context.CancelFunc
}

// NewManager creates a manager delivering events from q to h.
func NewManager(cfg config.Config, q *Queue, h Handler) *Manager {
	return &Manager{cfg: cfg, q: q, handler: h, now: time.Now}
}

// Start begins delivery and autoscaling in the background.
func (m *Manager) Start(parent context.Context) {
	m.ctx, m.cancel = context.WithCancel(parent)
	m.q.Start(m.ctx, m.cfg.QueueHighWatermark)
	m.addWorkers(max(m.cfg.InitialWorkerCount, 1))
	go m.scaler()
}

// Stop cancels the broker, the scaler and every worker.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	for _, c := range m.workerCancels {
		c()
	}
	m.workerCancels = nil
	m.mu.Unlock()
}

// Publish stamps the event with the next sequence number, and a timestamp
// if it has none, then enqueues it. It returns false after CloseIntake.
func (m *Manager) Publish(ev model.Event) bool {
	if m.q.IsShuttingDown() {
		return false
	}
	ev.Sequence = m.seq.Add(1)
	if ev.At.IsZero() {
		ev.At = m.now().UTC()
	}
	return m.q.Enqueue(ev)
}

func (m *Manager) scaler() {
	t := time.NewTicker(m.cfg.ScaleInterval)
	defer t.Stop()
	idleTicks := 0
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-t.C:
			backlog := m.q.BacklogSize()
			wc := m.WorkerCount()
			if backlog > wc*m.cfg.ScaleUpBacklogPerWorker && wc < m.cfg.WorkerMax {
				m.addWorkers(1)
				idleTicks = 0
				continue
			}
			if backlog != 0 {
				idleTicks = 0
				continue
			}
			idleTicks++
			if idleTicks >= m.cfg.ScaleDownIdleTicks && wc > m.cfg.WorkerMin {
				m.removeWorkers(1)
				idleTicks = 0
			}
		}
	}
}

func (m *Manager) addWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		wctx, cancel := context.WithCancel(m.ctx)
		m.workerCancels = append(m.workerCancels, cancel)
		go m.worker(wctx)
	}
	obs.Logger.Debug("workers_scaled", "worker_count", len(m.workerCancels))
}

func (m *Manager) removeWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n = min(n, len(m.workerCancels))
	for i := 0; i < n; i++ {
		last := len(m.workerCancels) - 1
		m.workerCancels[last]()
		m.workerCancels = m.workerCancels[:last]
	}
	obs.Logger.Debug("workers_scaled", "worker_count", len(m.workerCancels))
}

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.q.Out():
			m.handler.Handle(ev)
			m.q.MarkProcessed()
		}
	}
}

// WorkerCount returns the number of running workers.
func (m *Manager) WorkerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workerCancels)
}

// Stats returns the queue counters.
func (m *Manager) Stats() Stats { return m.q.Stats() }

// IsShuttingDown reports whether intake is closed.
func (m *Manager) IsShuttingDown() bool { return m.q.IsShuttingDown() }

// CloseIntake rejects further Publish calls.
func (m *Manager) CloseIntake() { m.q.CloseIntake() }

// DrainUntil waits until every published event was handled or ctx is done.
func (m *Manager) DrainUntil(ctx context.Context) bool {
	for {
		if m.q.Stats().Idle() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(20 * time.Millisecond):
		}
	}
}

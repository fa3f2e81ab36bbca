// ABOUTME: Per-handle status monitor shared by engine implementations
// ABOUTME: Polls a loaded clip on a ticker and fans status out to subscribers
package output

import (
	"context"
	"sync"
	"time"
)

// monitor publishes Status for one loaded handle until stopped or finished
type monitor struct {
	handle   Handle
	interval time.Duration
	poll     func() Status

	ctx    context.Context
	cancel context.CancelFunc

	finished   chan struct{}
	finishOnce sync.Once

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Status)
}

func newMonitor(h Handle, interval time.Duration, poll func() Status) *monitor {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &monitor{
		handle:   h,
		interval: interval,
		poll:     poll,
		ctx:      ctx,
		cancel:   cancel,
		finished: make(chan struct{}),
		subs:     make(map[int]func(Status)),
	}
}

// subscribe registers fn and returns its cancel func
func (m *monitor) subscribe(fn func(Status)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// finish signals natural end of media from a backend callback
func (m *monitor) finish() {
	m.finishOnce.Do(func() { close(m.finished) })
}

// stop cancels the monitor without waiting for its goroutine
func (m *monitor) stop() {
	m.cancel()
	m.mu.Lock()
	m.subs = make(map[int]func(Status))
	m.mu.Unlock()
}

func (m *monitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return

		case <-m.finished:
			if m.ctx.Err() != nil {
				return
			}
			st := m.poll()
			st.IsPlaying = false
			st.DidFinish = true
			if st.DurationMillis > 0 {
				st.PositionMillis = st.DurationMillis
			}
			m.emit(st)
			return

		case <-ticker.C:
			if m.ctx.Err() != nil {
				return
			}
			st := m.poll()
			m.emit(st)
			if st.DidFinish {
				return
			}
		}
	}
}

// emit delivers st to every subscriber unless the monitor was stopped
func (m *monitor) emit(st Status) {
	if m.ctx.Err() != nil {
		return
	}

	m.mu.Lock()
	fns := make([]func(Status), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

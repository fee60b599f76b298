package client

import (
	"context"
	"sync"
)

// Latest is a per-screen single-flight handle. Starting a new fetch cancels
// the one in flight, and a superseded fetch's result is dropped even if it
// finishes after the newer one started. A screen holds one Latest per data
// source, so whatever lands on screen always comes from the newest request.
type Latest struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Do runs fn with a context that is canceled when a newer Do begins. The
// returned bool reports whether this call was still the latest when fn
// finished; callers discard the result otherwise.
func (l *Latest) Do(ctx context.Context, fn func(ctx context.Context) error) (bool, error) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	seq := l.seq
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	err := fn(ctx)

	l.mu.Lock()
	latest := seq == l.seq
	if latest {
		l.cancel = nil
		cancel()
	}
	l.mu.Unlock()

	return latest, err
}

// Stop cancels any fetch in flight without starting a new one.
func (l *Latest) Stop() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.seq++
	l.mu.Unlock()
}

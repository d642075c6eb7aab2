package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// WithRequestID attaches a request ID for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID carried by ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Ticket identifies one request started by a Tracker.
type Ticket struct {
	ID        uint64
	RequestID string
	cancel    context.CancelFunc
}

// Tracker keeps at most one request current per lane. Starting a request
// cancels the previous one, and results of superseded requests are discarded
// by checking IsCurrent before they are shown.
type Tracker struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	current uint64
}

// Begin starts a new request derived from parent and supersedes any earlier one.
func (t *Tracker) Begin(parent context.Context) (context.Context, Ticket) {
	rid := uuid.NewString()
	ctx, cancel := context.WithCancel(WithRequestID(parent, rid))

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.cancel = cancel
	t.current++
	id := t.current
	t.mu.Unlock()

	return ctx, Ticket{ID: id, RequestID: rid, cancel: cancel}
}

// Finish releases the request's context and reports whether it is still current.
func (t *Tracker) Finish(tk Ticket) bool {
	if tk.cancel != nil {
		tk.cancel()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != tk.ID {
		return false
	}
	t.cancel = nil
	return true
}

// IsCurrent reports whether id belongs to the most recently started request.
func (t *Tracker) IsCurrent(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return id != 0 && id == t.current
}

// Cancel aborts the in-flight request, if any. Its result will be stale.
func (t *Tracker) Cancel() bool {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.current++
	t.mu.Unlock()
	if cancel == nil {
		return false
	}
	cancel()
	return true
}

// Package cleanup runs shutdown hooks (log files, remote clients) once, in
// reverse registration order.
package cleanup

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/oukeidos/percept/internal/logger"
)

type hook struct {
	name string
	fn   func() error
}

var (
	mu    sync.Mutex
	hooks []hook
)

// Register adds fn under name. Nil hooks are ignored.
func Register(name string, fn func() error) {
	if fn == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	hooks = append(hooks, hook{name: name, fn: fn})
}

// RegisterCloser schedules c.Close.
func RegisterCloser(name string, c io.Closer) {
	if c == nil {
		return
	}
	Register(name, c.Close)
}

// RunAll runs and forgets every registered hook, newest first. Each error is
// prefixed with its hook's name; all of them are joined.
func RunAll() error {
	mu.Lock()
	pending := hooks
	hooks = nil
	mu.Unlock()

	var errs []error
	for i := len(pending) - 1; i >= 0; i-- {
		h := pending[i]
		logger.Debug("Running cleanup hook", "hook", h.name)
		if err := h.fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("cleanup failed: %w", errors.Join(errs...))
}

package main

import (
	"fmt"
	"runtime/debug"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"github.com/oukeidos/percept/internal/logger"
)

const panicNotice = "An internal error occurred and the current task was stopped. Please retry. If this repeats, restart the app."

// withPanicGuard runs fn. A panic is logged and passed to onPanic instead of
// crashing the app.
func withPanicGuard(scope string, onPanic func(any), fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		logger.Error("Recovered panic", "scope", scope, "panic", fmt.Sprint(r))
		logger.Debug("Panic stack", "scope", scope, "stack", string(debug.Stack()))
		if onPanic != nil {
			onPanic(r)
		}
	}()
	fn()
}

// safeGo and safeDo are the guards for code that has no app to reset.
func safeGo(scope string, fn func()) { (*perceptApp)(nil).safeGo(scope, fn) }
func safeDo(scope string, fn func()) { (*perceptApp)(nil).safeDo(scope, fn) }

// panicHandler returns the recovery callback for scope, or nil without an app.
func (a *perceptApp) panicHandler(scope string) func(any) {
	if a == nil {
		return nil
	}
	return func(any) { a.handleRecoveredPanic(scope) }
}

// safeGo runs fn on a new goroutine.
func (a *perceptApp) safeGo(scope string, fn func()) {
	go withPanicGuard(scope, a.panicHandler(scope), fn)
}

// safeDo runs fn on the UI goroutine. Both the dispatch and fn are guarded.
func (a *perceptApp) safeDo(scope string, fn func()) {
	dispatch := scope + ".dispatch"
	withPanicGuard(dispatch, a.panicHandler(dispatch), func() {
		fyne.Do(func() {
			withPanicGuard(scope, a.panicHandler(scope), fn)
		})
	})
}

// handleRecoveredPanic stops both lanes, unlocks the image controls and
// tells the user once per run.
func (a *perceptApp) handleRecoveredPanic(scope string) {
	if fyne.CurrentApp() == nil {
		return
	}
	a.cancelAll("panic recovered: " + scope)

	safeDo("panic.reset", func() {
		if a.image != nil {
			a.image.setBusy(false)
		}
	})
	a.panicNoticeOnce.Do(func() {
		safeDo("panic.notice", func() {
			if a.window != nil {
				dialog.ShowInformation("Unexpected Error", panicNotice, a.window)
			}
		})
	})
}

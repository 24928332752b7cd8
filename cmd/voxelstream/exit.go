package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// exitHandshake lets a signal handler on another goroutine stop the frame
// loop and wait until the main thread has released the window and context.
type exitHandshake struct {
	quit    *atomic.Bool
	done    chan struct{}
	timeout time.Duration
	log     logrus.FieldLogger
}

func newExitHandshake(quit *atomic.Bool, timeout time.Duration, log logrus.FieldLogger) *exitHandshake {
	return &exitHandshake{
		quit:    quit,
		done:    make(chan struct{}),
		timeout: timeout,
		log:     log,
	}
}

// onSignal is bound to closer. It returns once finish has run or the
// timeout passes, after which closer exits the process.
func (h *exitHandshake) onSignal() {
	h.quit.Store(true)
	select {
	case <-h.done:
	case <-time.After(h.timeout):
		h.log.Warn("Timed out waiting for shutdown")
	}
}

// finish runs the teardown steps in order on the calling goroutine, which
// must be the GL thread, and then releases onSignal.
func (h *exitHandshake) finish(steps ...func()) {
	for _, step := range steps {
		step()
	}
	close(h.done)
}

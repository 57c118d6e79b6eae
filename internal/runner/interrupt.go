package runner

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// interrupter turns SIGINT/SIGTERM into cancellation of the current stage.
// Generation and probing are separate stages, so an interrupted generation
// still hands its partial output to probing.
type interrupter struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	sigCh  chan os.Signal
	done   chan struct{}
	once   sync.Once
}

func newInterrupter() *interrupter {
	i := &interrupter{
		sigCh: make(chan os.Signal, 1),
		done:  make(chan struct{}),
	}
	signal.Notify(i.sigCh, os.Interrupt, syscall.SIGTERM)
	go i.loop()
	return i
}

func (i *interrupter) loop() {
	for {
		select {
		case <-i.sigCh:
			i.interrupt()
		case <-i.done:
			return
		}
	}
}

// interrupt cancels the current stage. Raw-mode stdin calls it for Ctrl+C,
// which no longer raises SIGINT.
func (i *interrupter) interrupt() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cancel != nil {
		i.cancel()
	}
}

// stage returns a context cancelled by the next signal. A nil interrupter
// only derives from parent.
func (i *interrupter) stage(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	if i == nil {
		return ctx, cancel
	}
	i.mu.Lock()
	i.cancel = cancel
	i.mu.Unlock()
	return ctx, cancel
}

// Stop releases the signal handler.
func (i *interrupter) Stop() {
	if i == nil {
		return
	}
	i.once.Do(func() {
		signal.Stop(i.sigCh)
		close(i.done)
	})
}

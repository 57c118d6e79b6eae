package runner

import (
	"os"
	"sync/atomic"

	"golang.org/x/term"

	"github.com/maxvaer/rexprobe/internal/scanner"
)

// startStdinToggle reads single keypresses from stdin and toggles a Pauser
// on Enter or Space, calling onToggle with the new state. Ctrl+C calls
// onInterrupt. The returned
// cleanup restores the terminal. When stdin is not a terminal it returns a
// nil Pauser and a no-op cleanup.
func startStdinToggle(stdin *os.File, onToggle func(paused bool), onInterrupt func()) (pauser *scanner.Pauser, cleanup func()) {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, func() {}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, func() {}
	}
	// MakeRaw also turns off output processing; status lines need \n -> \r\n.
	restoreOutputProcessing(fd)

	pauser = scanner.NewPauser()
	var done atomic.Bool
	cleanup = func() {
		done.Store(true)
		_ = term.Restore(fd, oldState)
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := stdin.Read(buf)
			if err != nil || done.Load() {
				return
			}
			if n == 0 {
				continue
			}

			switch buf[0] {
			case 0x03: // raw mode swallows SIGINT
				if onInterrupt != nil {
					onInterrupt()
				}
			case '\r', '\n', ' ':
				paused := pauser.Toggle()
				if onToggle != nil {
					onToggle(paused)
				}
			}
		}
	}()

	return pauser, cleanup
}

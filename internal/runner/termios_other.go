//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package runner

// Windows consoles keep output processing in raw mode.
func restoreOutputProcessing(int) {}

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package runner

import "golang.org/x/sys/unix"

// restoreOutputProcessing turns OPOST back on after term.MakeRaw so status
// lines written while the pause toggle is active still get \n -> \r\n.
func restoreOutputProcessing(fd int) {
	t, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return
	}
	t.Oflag |= unix.OPOST
	_ = unix.IoctlSetTermios(fd, ioctlSetTermios, t)
}

//go:build unix && !linux

package process

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// newPipe holds the fork lock so no child is created between pipe and
// close-on-exec.
func newPipe() (r, w *descriptor, err error) {
	var fds [2]int
	syscall.ForkLock.RLock()
	err = unix.Pipe(fds[:])
	if err == nil {
		unix.CloseOnExec(fds[0])
		unix.CloseOnExec(fds[1])
	}
	syscall.ForkLock.RUnlock()
	if err != nil {
		return nil, nil, err
	}
	return &descriptor{fd: fds[0]}, &descriptor{fd: fds[1]}, nil
}

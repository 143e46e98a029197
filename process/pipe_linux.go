//go:build linux

package process

import "golang.org/x/sys/unix"

func newPipe() (r, w *descriptor, err error) {
	var fds [2]int
	if err = unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return nil, nil, err
	}
	return &descriptor{fd: fds[0]}, &descriptor{fd: fds[1]}, nil
}

//go:build unix

package process

import (
	"os"
	"strconv"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// maxSealedDescriptor bounds the fallback scan when the soft limit is
// unlimited or absurdly large.
const maxSealedDescriptor = 1 << 16

// descriptorLimit is queried once, outside any fork.
var descriptorLimit = sync.OnceValue(func() int {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &lim); err != nil || lim.Cur == 0 {
		return 256
	}
	if lim.Cur > maxSealedDescriptor {
		return maxSealedDescriptor
	}
	return int(lim.Cur)
})

// launchMu serializes seal, fork and restore so one call's restore cannot
// expose descriptors to another call's child.
var launchMu sync.Mutex

// sealDescriptors marks every descriptor above stderr close-on-exec, so the
// child inherits nothing but the three standard streams it is given. It
// returns the descriptors whose flag it set; restoreDescriptors clears it
// again once the child exists.
func sealDescriptors() []int {
	var sealed []int
	seal := func(fd int) {
		flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
		if err != nil || flags&unix.FD_CLOEXEC != 0 {
			return
		}
		if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFD, flags|unix.FD_CLOEXEC); err == nil {
			sealed = append(sealed, fd)
		}
	}

	if entries, err := os.ReadDir("/proc/self/fd"); err == nil {
		for _, e := range entries {
			if fd, err := strconv.Atoi(e.Name()); err == nil && fd > 2 {
				seal(fd)
			}
		}
		return sealed
	}
	for fd := 3; fd < descriptorLimit(); fd++ {
		seal(fd)
	}
	return sealed
}

// restoreDescriptors makes the sealed descriptors inheritable again.
func restoreDescriptors(fds []int) {
	for _, fd := range fds {
		flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
		if err != nil {
			continue
		}
		_, _ = unix.FcntlInt(uintptr(fd), unix.F_SETFD, flags&^unix.FD_CLOEXEC)
	}
}

// launch creates the child. The runtime's fork path runs the child branch
// without allocating or calling back into Go code: it makes the child a
// process group leader, duplicates files onto fds 0-2, and replaces the
// image with path. If the image cannot be replaced the child exits and the
// runtime reports the errno here, so the parent only ever sees a pid or an
// error.
func launch(path string, argv, env []string, dir string, files []uintptr) (int, error) {
	launchMu.Lock()
	defer launchMu.Unlock()

	sealed := sealDescriptors()
	defer restoreDescriptors(sealed)
	return syscall.ForkExec(path, argv, &syscall.ProcAttr{
		Dir:   dir,
		Env:   env,
		Files: files,
		Sys:   &syscall.SysProcAttr{Setpgid: true},
	})
}

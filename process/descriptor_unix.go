//go:build unix

package process

import (
	"golang.org/x/sys/unix"

	goerrors "github.com/kbukum/execkit/errors"
)

// descriptor owns one OS file descriptor. close releases it exactly once;
// later calls are no-ops, so an endpoint may be closed early by the
// component using it and again by the owning pipeSet on the way out.
type descriptor struct {
	fd int
}

func (d *descriptor) valid() bool {
	return d != nil && d.fd >= 0
}

func (d *descriptor) close() {
	if !d.valid() {
		return
	}
	_ = unix.Close(d.fd)
	d.fd = -1
}

// pipeSet holds both ends of the stdin, stdout and stderr pipes of one call.
type pipeSet struct {
	stdinRead   *descriptor
	stdinWrite  *descriptor
	stdoutRead  *descriptor
	stdoutWrite *descriptor
	stderrRead  *descriptor
	stderrWrite *descriptor
	devNull     *descriptor

	// childStderr is the parent fd that becomes the child's stderr.
	childStderr *descriptor
}

// newPipeSet allocates the pipes for one call. On failure everything already
// allocated is released and a SETUP_FAILED error is returned.
func newPipeSet(mode stderrMode, hasInput bool) (*pipeSet, error) {
	p := &pipeSet{}
	ready := false
	defer func() {
		if !ready {
			p.close()
		}
	}()

	var err error

	if p.stdinRead, p.stdinWrite, err = newPipe(); err != nil {
		return nil, goerrors.SetupFailed("pipe for stdin redirection", err)
	}
	if p.stdoutRead, p.stdoutWrite, err = newPipe(); err != nil {
		return nil, goerrors.SetupFailed("pipe for stdout redirection", err)
	}

	switch mode {
	case stderrToStdout:
		p.childStderr = p.stdoutWrite
	case stderrToNull:
		fd, openErr := unix.Open("/dev/null", unix.O_RDWR|unix.O_CLOEXEC, 0)
		if openErr != nil {
			return nil, goerrors.SetupFailed("null device for stderr redirection", openErr)
		}
		p.devNull = &descriptor{fd: fd}
		p.childStderr = p.devNull
	default:
		if p.stderrRead, p.stderrWrite, err = newPipe(); err != nil {
			return nil, goerrors.SetupFailed("pipe for stderr redirection", err)
		}
		p.childStderr = p.stderrWrite
	}

	// The loop only writes when poll reports room; a non-blocking end keeps
	// a large input from stalling it while the child waits on its own output.
	if hasInput {
		if err = unix.SetNonblock(p.stdinWrite.fd, true); err != nil {
			return nil, goerrors.SetupFailed("non-blocking stdin pipe", err)
		}
	}
	ready = true
	return p, nil
}

// childFiles returns the descriptors that become the child's fds 0, 1 and 2.
func (p *pipeSet) childFiles() []uintptr {
	return []uintptr{
		uintptr(p.stdinRead.fd),
		uintptr(p.stdoutWrite.fd),
		uintptr(p.childStderr.fd),
	}
}

// closeChildEnds releases every end that belongs to the child once it has
// been created. Keeping a write end open in the parent would hide the
// child's end-of-stream.
func (p *pipeSet) closeChildEnds(hasInput bool) {
	if !hasInput {
		p.stdinWrite.close()
	}
	p.stdinRead.close()
	p.stdoutWrite.close()
	p.stderrWrite.close()
	p.devNull.close()
}

// closeReadEnds releases the parent's read ends. A child still writing gets
// SIGPIPE on its next write.
func (p *pipeSet) closeReadEnds() {
	p.stdoutRead.close()
	p.stderrRead.close()
}

func (p *pipeSet) close() {
	for _, d := range []*descriptor{
		p.stdinRead, p.stdinWrite,
		p.stdoutRead, p.stdoutWrite,
		p.stderrRead, p.stderrWrite,
		p.devNull,
	} {
		d.close()
	}
}

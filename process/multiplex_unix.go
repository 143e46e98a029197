//go:build unix

package process

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	goerrors "github.com/kbukum/execkit/errors"
	"github.com/kbukum/execkit/logger"
)

// chunkSize is the size of each read from a child stream.
const chunkSize = 4096

// stream is the parent's side of one child output pipe.
type stream struct {
	name     string
	fd       *descriptor
	chunk    []byte
	total    strings.Builder
	callback ChunkFunc
}

func newStream(name string, fd *descriptor, callback ChunkFunc) *stream {
	return &stream{name: name, fd: fd, chunk: make([]byte, chunkSize), callback: callback}
}

func (s *stream) open() bool {
	return s.fd.valid()
}

func (s *stream) text(trim bool) string {
	if trim {
		return strings.TrimSpace(s.total.String())
	}
	return s.total.String()
}

// inputPipe is the parent's side of the child's stdin and the bytes not yet
// written to it.
type inputPipe struct {
	fd   *descriptor
	data []byte
}

func (in *inputPipe) pending() bool {
	return in != nil && in.fd.valid()
}

// abandon closes stdin so the child sees end-of-file.
func (in *inputPipe) abandon() {
	in.fd.close()
	in.data = nil
}

// loopResult is how the I/O loop ended when it did not fail.
type loopResult int

const (
	// loopDone means every pipe closed and all input was written or abandoned.
	loopDone loopResult = iota
	// loopStopped means a callback asked to stop reading.
	loopStopped
	// loopTimedOut means the alarm fired.
	loopTimedOut
	// loopCanceled means the context was canceled.
	loopCanceled
)

// multiplex moves data between the parent and the child until every pipe is
// closed, a callback stops it, the alarm fires or ctx is done.
//
// Bytes still buffered on another stream when a callback stops the loop are
// not delivered.
func multiplex(ctx context.Context, streams []*stream, in *inputPipe, al *alarm, log *logger.Logger) (loopResult, error) {
	waitMillis := -1
	if al.armed() || ctx.Done() != nil {
		waitMillis = int(expiryPollInterval / time.Millisecond)
	}

	fds := make([]unix.PollFd, 0, len(streams)+1)
	owners := make([]*stream, 0, len(streams))

	for {
		if al.fired() {
			return loopTimedOut, nil
		}
		if ctx.Err() != nil {
			return loopCanceled, nil
		}

		fds, owners = fds[:0], owners[:0]
		for _, s := range streams {
			if s.open() {
				fds = append(fds, unix.PollFd{Fd: int32(s.fd.fd), Events: unix.POLLIN})
				owners = append(owners, s)
			}
		}
		inputIdx := -1
		if in.pending() {
			inputIdx = len(fds)
			fds = append(fds, unix.PollFd{Fd: int32(in.fd.fd), Events: unix.POLLOUT})
		}
		if len(fds) == 0 {
			return loopDone, nil
		}

		n, err := unix.Poll(fds, waitMillis)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				log.Debug("poll call was interrupted and will be retried")
				continue
			}
			log.Error("poll call failed", logger.ErrorFields("poll", err))
			return 0, goerrors.IOFailed("child", err)
		}
		if n == 0 {
			continue
		}

		for i, s := range owners {
			revents := fds[i].Revents
			if revents&unix.POLLNVAL != 0 {
				return 0, goerrors.IOFailed(s.name, unix.EBADF)
			}
			if revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
				continue
			}
			stop, err := readChunk(s, log)
			if err != nil {
				return 0, err
			}
			if stop {
				return loopStopped, nil
			}
		}

		if inputIdx >= 0 && fds[inputIdx].Revents != 0 {
			if err := writeInput(in, log); err != nil {
				return 0, err
			}
		}
	}
}

// readChunk reads once from s, closing it at end-of-stream. It reports
// whether the stream's callback asked to stop.
func readChunk(s *stream, log *logger.Logger) (bool, error) {
	count, err := unix.Read(s.fd.fd, s.chunk)
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			log.Debug("pipe read was interrupted and will be retried", logger.Fields(logger.FieldStream, s.name))
			return false, nil
		}
		log.Error("pipe read failed", logger.Fields(logger.FieldStream, s.name, logger.FieldError, err.Error()))
		return false, goerrors.IOFailed(s.name, err)
	}
	if count == 0 {
		s.fd.close()
		return false, nil
	}

	data := s.chunk[:count]
	s.total.Write(data)
	if s.callback != nil && !s.callback(data) {
		return true, nil
	}
	return false, nil
}

// writeInput writes as much pending input as the pipe accepts and advances
// the cursor. Stdin is closed once everything is written, when a write
// makes no progress, or when the child has closed its end.
func writeInput(in *inputPipe, log *logger.Logger) error {
	if len(in.data) == 0 {
		in.abandon()
		return nil
	}

	count, err := unix.Write(in.fd.fd, in.data)
	switch {
	case errors.Is(err, unix.EINTR), errors.Is(err, unix.EAGAIN):
		log.Debug("stdin pipe write was interrupted and will be retried")
	case errors.Is(err, unix.EPIPE):
		log.Debug("child closed stdin before reading all input", logger.Fields("unwritten", len(in.data)))
		in.abandon()
	case err != nil:
		log.Error("stdin pipe write failed", logger.ErrorFields("write", err))
		return goerrors.IOFailed("stdin", err)
	case count == 0:
		in.abandon()
	default:
		in.data = in.data[count:]
		if len(in.data) == 0 {
			in.abandon()
		}
	}
	return nil
}

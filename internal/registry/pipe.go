// pipe.go implements the notification channel between handler context and
// the dispatch loop: a nonblocking socketpair used purely as a wake edge
// (the self-pipe trick). The pipe never carries data — which signal fired is
// recovered from the counter table, not from the bytes read.

//go:build !windows

package registry

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// wakePipe is one wake channel epoch. The read end is wrapped in an
// [os.File] so reads park on the runtime poller; the write end stays a raw
// descriptor poked from handler context.
type wakePipe struct {
	r *os.File
	w int
}

func newWakePipe() (*wakePipe, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("socketpair: %w", err)
	}
	return &wakePipe{
		r: os.NewFile(uintptr(fds[0]), "sigflow-wake"),
		w: fds[1],
	}, nil
}

// poke signals the dispatch loop. Safe from handler context: a single
// nonblocking one-byte write, retried only on EINTR. EAGAIN means the buffer
// is full, which already guarantees a pending wake, so it is ignored — the
// wake edge must fire at least once per increment batch, not once per
// occurrence.
func (p *wakePipe) poke() {
	b := [1]byte{1}
	for {
		_, err := unix.Write(p.w, b[:])
		if err != unix.EINTR {
			return
		}
	}
}

// wait blocks until at least one poke has arrived, consuming whatever bytes
// are readable. Leftover bytes beyond the buffer produce a spurious wake on
// the next call, which the dispatch loop tolerates (an empty drain).
func (p *wakePipe) wait() error {
	buf := make([]byte, 128)
	_, err := p.r.Read(buf)
	return err
}

// close tears down both ends. A handler-context poke racing with close may
// see a stale descriptor; poke ignores the resulting error.
func (p *wakePipe) close() {
	p.r.Close()
	unix.Close(p.w)
}

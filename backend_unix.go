// backend_unix.go binds the public Listener to the Unix signal registry:
// kinds are signal numbers, and the process-wide [registry.Registry] owns the
// counter table, wake pipe and hook refcounts.

//go:build !windows

package sigflow

import (
	"context"
	"fmt"
	"time"

	"tools.zach/dev/sigflow/internal/registry"
)

// SetConsoleAckTimeout tunes the Windows console acknowledgment grace
// period. It has no effect on Unix, where delivery never blocks the OS.
func SetConsoleAckTimeout(time.Duration) {}

// newBackend subscribes to the default registry for the given kinds.
func newBackend(kinds []Kind) (backend, error) {
	nums, err := numbersFor(kinds)
	if err != nil {
		return nil, err
	}
	sub, err := registry.Default().Subscribe(nums)
	if err != nil {
		return nil, err
	}
	return &unixBackend{sub: sub}, nil
}

// numbersFor validates kinds and converts them to signal numbers.
func numbersFor(kinds []Kind) ([]int, error) {
	nums := make([]int, 0, len(kinds))
	for _, k := range kinds {
		if !k.Supported() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSignal, k)
		}
		nums = append(nums, int(k))
	}
	return nums, nil
}

type unixBackend struct {
	sub *registry.Subscriber
}

func (b *unixBackend) add(kinds []Kind) error {
	nums, err := numbersFor(kinds)
	if err != nil {
		return err
	}
	return b.sub.Add(nums)
}

func (b *unixBackend) remove(kinds []Kind) {
	nums := make([]int, 0, len(kinds))
	for _, k := range kinds {
		nums = append(nums, int(k))
	}
	b.sub.Remove(nums)
}

func (b *unixBackend) next(ctx context.Context) (Kind, error) {
	n, err := b.sub.Next(ctx)
	if err != nil {
		return 0, err
	}
	return Kind(n), nil
}

func (b *unixBackend) close() {
	b.sub.Close()
}

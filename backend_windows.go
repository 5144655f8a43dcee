// backend_windows.go binds the public Listener to the console event router:
// kinds map to console control events and registration is an event mask on
// the process-wide [console.Router].

//go:build windows

package sigflow

import (
	"context"
	"fmt"
	"time"

	"tools.zach/dev/sigflow/internal/console"
)

// SetConsoleAckTimeout tunes how long the console handler waits for every
// listener to acknowledge an event before letting the OS proceed.
func SetConsoleAckTimeout(d time.Duration) {
	console.Default().SetAckTimeout(d)
}

// newBackend subscribes to the default router with a mask covering kinds.
func newBackend(kinds []Kind) (backend, error) {
	mask, err := maskFor(kinds)
	if err != nil {
		return nil, err
	}
	sub, err := console.Default().Subscribe(mask)
	if err != nil {
		return nil, err
	}
	return &winBackend{sub: sub}, nil
}

// maskFor validates kinds and builds the router event mask.
func maskFor(kinds []Kind) (console.Mask, error) {
	var mask console.Mask
	for _, k := range kinds {
		e, ok := consoleEvents[k]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrInvalidSignal, k)
		}
		mask = mask.With(e)
	}
	return mask, nil
}

type winBackend struct {
	sub *console.Subscriber
}

func (b *winBackend) add(kinds []Kind) error {
	mask, err := maskFor(kinds)
	if err != nil {
		return err
	}
	return b.sub.Add(mask)
}

func (b *winBackend) remove(kinds []Kind) {
	var mask console.Mask
	for _, k := range kinds {
		if e, ok := consoleEvents[k]; ok {
			mask = mask.With(e)
		}
	}
	b.sub.Remove(mask)
}

func (b *winBackend) next(ctx context.Context) (Kind, error) {
	e, err := b.sub.Next(ctx)
	if err != nil {
		return 0, err
	}
	return consoleKinds[e], nil
}

func (b *winBackend) close() {
	b.sub.Close()
}

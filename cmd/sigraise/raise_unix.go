// Unix delivery via kill(2).

//go:build !windows

package main

import (
	"fmt"

	"golang.org/x/sys/unix"

	"tools.zach/dev/sigflow"
)

// raise sends the signal for kind to pid.
func raise(kind sigflow.Kind, pid int) error {
	if err := unix.Kill(pid, unix.Signal(kind)); err != nil {
		return fmt.Errorf("kill %d with %s: %w", pid, kind, err)
	}
	return nil
}

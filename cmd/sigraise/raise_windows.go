// Windows delivery via GenerateConsoleCtrlEvent. Only Ctrl+C and Ctrl+Break
// can be generated programmatically; the target pid must identify a process
// group sharing this console (0 targets our own group).

//go:build windows

package main

import (
	"fmt"

	"golang.org/x/sys/windows"

	"tools.zach/dev/sigflow"
)

// raise sends the console event for kind to the process group pid.
func raise(kind sigflow.Kind, pid int) error {
	var code uint32
	switch kind {
	case sigflow.CtrlC:
		code = windows.CTRL_C_EVENT
	case sigflow.CtrlBreak:
		code = windows.CTRL_BREAK_EVENT
	default:
		return fmt.Errorf("%s cannot be generated programmatically", kind)
	}
	if err := windows.GenerateConsoleCtrlEvent(code, uint32(pid)); err != nil {
		return fmt.Errorf("generate %s for group %d: %w", kind, pid, err)
	}
	return nil
}

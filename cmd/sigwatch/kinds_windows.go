// Windows event classification for the sigwatch daemon: Ctrl+C, Ctrl+Break
// and the terminal console events stop the daemon. Windows has no reload
// signal; config reloads come only from the file watcher.

//go:build windows

package main

import "tools.zach/dev/sigflow"

// defaultSignalNames is the built-in watch set when no config exists.
func defaultSignalNames() []string {
	return []string{"CTRL_C", "CTRL_BREAK", "CLOSE", "SHUTDOWN"}
}

// mandatoryKinds are always watched so the daemon can stop even when the
// config omits them.
func mandatoryKinds() []sigflow.Kind {
	return []sigflow.Kind{sigflow.CtrlC, sigflow.CtrlBreak}
}

// isShutdown reports whether k should stop the daemon.
func isShutdown(k sigflow.Kind) bool {
	switch k {
	case sigflow.CtrlC, sigflow.CtrlBreak, sigflow.ConsoleClose, sigflow.Logoff, sigflow.Shutdown:
		return true
	}
	return false
}

// isReload reports whether k should reload the configuration.
func isReload(sigflow.Kind) bool {
	return false
}

// Unix signal classification for the sigwatch daemon: SIGINT and SIGTERM
// stop the daemon, SIGHUP reloads the configuration.

//go:build !windows

package main

import "tools.zach/dev/sigflow"

// defaultSignalNames is the built-in watch set when no config exists.
func defaultSignalNames() []string {
	return []string{"SIGHUP", "SIGINT", "SIGTERM", "SIGUSR1", "SIGUSR2"}
}

// mandatoryKinds are always watched so the daemon can stop and reload even
// when the config omits them.
func mandatoryKinds() []sigflow.Kind {
	return []sigflow.Kind{sigflow.SIGHUP, sigflow.SIGINT, sigflow.SIGTERM}
}

// isShutdown reports whether k should stop the daemon.
func isShutdown(k sigflow.Kind) bool {
	return k == sigflow.SIGINT || k == sigflow.SIGTERM
}

// isReload reports whether k should reload the configuration.
func isReload(k sigflow.Kind) bool {
	return k == sigflow.SIGHUP
}

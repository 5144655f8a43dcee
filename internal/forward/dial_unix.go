// dial_unix.go connects to the collector over a Unix domain socket.

//go:build !windows

package forward

import (
	"net"
	"time"
)

// dialTimeout bounds the connection attempt; the collector is local, so a
// slow dial means it is not there.
const dialTimeout = 2 * time.Second

func dial(endpoint string) (net.Conn, error) {
	return net.DialTimeout("unix", endpoint, dialTimeout)
}

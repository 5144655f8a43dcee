// dial_windows.go connects to the collector over a named pipe
// (\\.\pipe\<name>) using the go-winio library.

//go:build windows

package forward

import (
	"net"
	"time"

	"github.com/Microsoft/go-winio"
)

// dialTimeout bounds the connection attempt; the collector is local, so a
// slow dial means it is not there.
const dialTimeout = 2 * time.Second

func dial(endpoint string) (net.Conn, error) {
	timeout := dialTimeout
	return winio.DialPipe(endpoint, &timeout)
}

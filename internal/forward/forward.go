// Package forward relays delivered signal events to a local collector
// endpoint: a Unix domain socket on Unix-like systems, a named pipe on
// Windows. One JSON line is written per event, so a collector can stream
// records with a line scanner.
package forward

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// Record is the wire form of one forwarded event.
type Record struct {
	// Signal is the canonical kind name, e.g. "SIGTERM" or "CTRL_C".
	Signal string `json:"signal"`
	// PID is the process the event was delivered to.
	PID int `json:"pid"`
	// Time is the delivery time in UTC.
	Time time.Time `json:"time"`
}

// Forwarder holds one connection to the collector endpoint.
type Forwarder struct {
	mu   sync.Mutex
	conn net.Conn
}

// Dial connects to the collector at endpoint: a socket path on Unix, a
// \\.\pipe\ name on Windows.
func Dial(endpoint string) (*Forwarder, error) {
	conn, err := dial(endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial forward endpoint %s: %w", endpoint, err)
	}
	return &Forwarder{conn: conn}, nil
}

// Send writes one record for the named signal.
func (f *Forwarder) Send(signalName string) error {
	data, err := json.Marshal(Record{
		Signal: signalName,
		PID:    os.Getpid(),
		Time:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode forward record: %w", err)
	}
	data = append(data, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.conn.Write(data); err != nil {
		return fmt.Errorf("forward %s: %w", signalName, err)
	}
	return nil
}

// Close closes the collector connection.
func (f *Forwarder) Close() error {
	return f.conn.Close()
}

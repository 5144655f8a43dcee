// Package webhook posts delivered signal events to an HTTP endpoint.
//
// Transient failures are retried with backoff; a webhook that stays down is
// logged and skipped rather than blocking signal delivery.
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// payload is the JSON body of one notification.
type payload struct {
	Signal string    `json:"signal"`
	PID    int       `json:"pid"`
	Host   string    `json:"host,omitempty"`
	Time   time.Time `json:"time"`
}

// Notifier posts signal events to a single webhook URL.
type Notifier struct {
	url    string
	client *retryablehttp.Client
}

// New creates a Notifier for url. timeout bounds each attempt; zero means
// 10 seconds.
func New(url string, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = timeout
	client.Logger = nil // suppress retryablehttp's default logging
	return &Notifier{url: url, client: client}
}

// Notify posts one event for the named signal.
func (n *Notifier) Notify(signalName string) error {
	host, _ := os.Hostname()
	body, err := json.Marshal(payload{
		Signal: signalName,
		PID:    os.Getpid(),
		Host:   host,
		Time:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("POST %s: %w", n.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %d", n.url, resp.StatusCode)
	}
	return nil
}

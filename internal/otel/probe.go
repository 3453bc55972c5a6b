package otel

import (
	"fmt"
	"net"
	"time"
)

const probeInterval = time.Second

// WaitForEndpoint blocks until a TCP connection to the collector endpoint
// succeeds, probing once per second. Returns an error when the timeout
// elapses first. Exporters buffer through brief collector downtime, but
// without an initial listener the first batches are silently lost; this
// probe closes that startup window.
func WaitForEndpoint(endpoint string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	deadline := time.Now().Add(timeout)

	for {
		conn, err := net.DialTimeout("tcp", endpoint, probeInterval)
		if err == nil {
			conn.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("collector %s not reachable after %s: %w", endpoint, timeout, err)
		}
		time.Sleep(probeInterval)
	}
}

package otel

import (
	"net"
	"testing"
	"time"
)

func TestWaitForEndpoint_Up(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	if err := WaitForEndpoint(ln.Addr().String(), 5*time.Second); err != nil {
		t.Fatalf("expected probe to succeed: %v", err)
	}
}

func TestWaitForEndpoint_Timeout(t *testing.T) {
	// Port 1 is essentially guaranteed to refuse connections.
	err := WaitForEndpoint("127.0.0.1:1", time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

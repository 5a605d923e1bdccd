package health

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestTCPChecker_OpenPort(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer listener.Close()

	checker := NewTCPChecker(listener.Addr().String())

	ctx := context.Background()
	result := checker.Check(ctx)

	if !result.Healthy {
		t.Errorf("Expected healthy, got unhealthy: %s", result.Message)
	}
}

func TestTCPChecker_ClosedPort(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	checker := NewTCPChecker(addr).WithTimeout(200 * time.Millisecond)

	ctx := context.Background()
	result := checker.Check(ctx)

	if result.Healthy {
		t.Error("Expected unhealthy for a closed port, got healthy")
	}
}

func TestTCPChecker_Type(t *testing.T) {
	checker := NewTCPChecker("127.0.0.1:0")
	if checker.Type() != CheckTypeTCP {
		t.Errorf("Expected type %s, got %s", CheckTypeTCP, checker.Type())
	}
}

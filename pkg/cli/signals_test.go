package cli

import (
	"syscall"
	"testing"
	"time"
)

func TestSetupSignalHandlerCancelsOnSignal(t *testing.T) {
	ctx := SetupSignalHandler()

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before any signal")
	default:
	}

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("send SIGTERM: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}
}

func TestWaitForShutdownDeliversSignal(t *testing.T) {
	sigChan := WaitForShutdown()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("send SIGINT: %v", err)
	}

	select {
	case sig := <-sigChan:
		if sig != syscall.SIGINT {
			t.Errorf("received %v, want SIGINT", sig)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no signal received")
	}
}

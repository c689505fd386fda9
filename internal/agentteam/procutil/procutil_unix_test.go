//go:build !windows

package procutil

import (
	"os/exec"
	"syscall"
	"testing"
	"time"
)

func TestTerminateStopsAChildProcess(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Skipf("sleep not available: %v", err)
	}
	if err := Terminate(cmd.Process.Pid); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	waitExited(t, cmd)
}

func TestKillStopsAChildProcess(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Skipf("sleep not available: %v", err)
	}
	if err := Kill(cmd.Process.Pid); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	waitExited(t, cmd)
}

func waitExited(t *testing.T, cmd *exec.Cmd) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		var exitErr *exec.ExitError
		if err == nil {
			t.Fatal("expected the signaled process to report a non-nil wait error")
		}
		if !errorsAs(err, &exitErr) {
			t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit after signal")
	}
}

func errorsAs(err error, target **exec.ExitError) bool {
	if e, ok := err.(*exec.ExitError); ok {
		*target = e
		return true
	}
	return false
}

func TestShutdownSignalsIncludesSigintAndSigterm(t *testing.T) {
	sigs := ShutdownSignals()
	var hasInt, hasTerm bool
	for _, s := range sigs {
		if s == syscall.SIGINT {
			hasInt = true
		}
		if s == syscall.SIGTERM {
			hasTerm = true
		}
	}
	if !hasInt || !hasTerm {
		t.Fatalf("ShutdownSignals() = %v, want SIGINT and SIGTERM", sigs)
	}
}

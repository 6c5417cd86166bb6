package recovery

import (
	"bytes"
	"os"
	"os/exec"
	"testing"
)

func TestHandlePanic_NoPanic(t *testing.T) {
	// Must be a no-op on the clean path.
	func() {
		defer HandlePanic()
	}()
}

func TestHandlePanicFunc_NoPanic(t *testing.T) {
	called := false
	func() {
		defer HandlePanicFunc(func() { called = true })
	}()
	if called {
		t.Error("cleanup ran without a panic")
	}
}

func TestHandlePanicFunc_NilCleanup(t *testing.T) {
	func() {
		defer HandlePanicFunc(nil)
	}()
}

// TestHandlePanic_ExitsOnPanic re-execs the test binary so the os.Exit can
// be observed from outside.
func TestHandlePanic_ExitsOnPanic(t *testing.T) {
	if os.Getenv("RECOVERY_TEST_PANIC") == "1" {
		defer HandlePanic()
		panic("keyer blew up")
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestHandlePanic_ExitsOnPanic")
	cmd.Env = append(os.Environ(), "RECOVERY_TEST_PANIC=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if exitErr, ok := err.(*exec.ExitError); ok {
		if exitErr.ExitCode() != 1 {
			t.Errorf("exit code = %d, want 1", exitErr.ExitCode())
		}
	} else if err == nil {
		t.Error("subprocess succeeded, want exit code 1")
	}

	out := stderr.String()
	if !bytes.Contains([]byte(out), []byte("FATAL")) {
		t.Errorf("stderr missing FATAL marker: %s", out)
	}
	if !bytes.Contains([]byte(out), []byte("keyer blew up")) {
		t.Errorf("stderr missing panic value: %s", out)
	}
	if !bytes.Contains([]byte(out), []byte("Stack trace")) {
		t.Errorf("stderr missing stack trace: %s", out)
	}
}

func TestHandlePanicFunc_RunsCleanupOnPanic(t *testing.T) {
	if os.Getenv("RECOVERY_TEST_PANIC_FUNC") == "1" {
		defer HandlePanicFunc(func() {
			_, _ = os.Stdout.WriteString("CLEANUP_RAN\n")
		})
		panic("reader blew up")
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestHandlePanicFunc_RunsCleanupOnPanic")
	cmd.Env = append(os.Environ(), "RECOVERY_TEST_PANIC_FUNC=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if exitErr, ok := err.(*exec.ExitError); ok {
		if exitErr.ExitCode() != 1 {
			t.Errorf("exit code = %d, want 1", exitErr.ExitCode())
		}
	} else if err == nil {
		t.Error("subprocess succeeded, want exit code 1")
	}

	if !bytes.Contains(stdout.Bytes(), []byte("CLEANUP_RAN")) {
		t.Errorf("cleanup did not run: %s", stdout.String())
	}
	if !bytes.Contains(stderr.Bytes(), []byte("reader blew up")) {
		t.Errorf("stderr missing panic value: %s", stderr.String())
	}
}

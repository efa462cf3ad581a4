package execx

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/grokify/releaseconductor/pkg/model"
)

func TestRunCapturesStdout(t *testing.T) {
	r := New(t.TempDir(), false, false)

	result, err := r.Run(context.Background(), "sh", "-c", "echo hello")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "hello" {
		t.Errorf("Stdout = %q, want hello", result.Stdout)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
}

func TestRunFailureWrapsExternalTool(t *testing.T) {
	r := New(t.TempDir(), false, false)

	result, err := r.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	if !errors.Is(err, model.ErrExternalTool) {
		t.Fatalf("Run error = %v, want ErrExternalTool", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q should carry stderr tail", err)
	}
}

func TestRunWithInput(t *testing.T) {
	r := New(t.TempDir(), false, false)

	result, err := r.RunWithInput(context.Background(), "secret\n", "sh", "-c", "cat")
	if err != nil {
		t.Fatalf("RunWithInput returned error: %v", err)
	}
	if result.Stdout != "secret\n" {
		t.Errorf("Stdout = %q, want stdin echoed", result.Stdout)
	}
}

func TestDryRunSkipsExecution(t *testing.T) {
	var log bytes.Buffer
	r := New(t.TempDir(), true, false)
	r.Log = &log

	result, err := r.Run(context.Background(), "sh", "-c", "exit 1")
	if err != nil {
		t.Fatalf("dry-run Run returned error: %v", err)
	}
	if result.Stdout != "" || result.ExitCode != 0 {
		t.Errorf("dry-run must not execute, got %+v", result)
	}
	if !strings.Contains(log.String(), "would run") {
		t.Errorf("dry-run should log the skipped command, got %q", log.String())
	}
}

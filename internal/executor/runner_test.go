package executor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestExecutor() (*Executor, *bytes.Buffer) {
	var out bytes.Buffer
	e := New()
	e.Stdin = strings.NewReader("")
	e.Stdout = &out
	e.Stderr = &out
	return e, &out
}

func TestExecutor_Run(t *testing.T) {
	e, out := newTestExecutor()

	res, err := e.Run(context.Background(), "sh", "-c", "echo prepared")
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d", res.ExitCode)
	}
	if strings.TrimSpace(out.String()) != "prepared" {
		t.Errorf("output = %q", out.String())
	}
}

func TestExecutor_RunInDir(t *testing.T) {
	e, out := newTestExecutor()
	e.Dir = t.TempDir()

	if _, err := e.Run(context.Background(), "sh", "-c", "pwd"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out.String()), e.Dir[strings.LastIndex(e.Dir, "/"):]) {
		t.Errorf("pwd = %q, want %q", out.String(), e.Dir)
	}
}

func TestExecutor_NonZeroExit(t *testing.T) {
	e, _ := newTestExecutor()

	res, err := e.Run(context.Background(), "sh", "-c", "exit 3")
	if err == nil {
		t.Fatal("Run() expected error for exit 3")
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(err.Error(), "exited with status 3") {
		t.Errorf("err = %v", err)
	}
}

func TestExecutor_ToolNotFound(t *testing.T) {
	e, _ := newTestExecutor()
	e.lookPath = func(string) (string, error) { return "", errors.New("nope") }

	_, err := e.Run(context.Background(), "cordova", "prepare")
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("err = %v, want ErrToolNotFound", err)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	e, _ := newTestExecutor()
	e.SetTimeout(50 * time.Millisecond)

	start := time.Now()
	_, err := e.Run(context.Background(), "sleep", "5")
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %v, want timeout", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("timeout was not enforced")
	}
}

package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/s-dudhiya/EduNexus/internal/conf"
	"github.com/s-dudhiya/EduNexus/internal/constants"
	judgeErrors "github.com/s-dudhiya/EduNexus/pkg/errors"
)

func strPtr(s string) *string { return &s }

// newShellRunner 使用 sh 作为解释器，覆盖与解释器无关的进程管理逻辑
func newShellRunner(t *testing.T, timeout time.Duration) *InterpreterRunner {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found, skipping test")
	}
	return &InterpreterRunner{
		Interpreter:   "sh",
		Timeout:       timeout,
		TempDir:       t.TempDir(),
		MaxOutputSize: 1024,
	}
}

func newPythonRunner(t *testing.T) *InterpreterRunner {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not found, skipping test")
	}
	return &InterpreterRunner{
		Interpreter:   "python3",
		Timeout:       5 * time.Second,
		TempDir:       t.TempDir(),
		MaxOutputSize: 1024 * 1024,
	}
}

// assertDirEmpty 检查临时程序文件已被清理
func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected temp dir to be empty, got %d entries", len(entries))
	}
}

func TestInterpreterRunner_StdinToStdout(t *testing.T) {
	r := newShellRunner(t, 2*time.Second)

	outcome, err := r.Run(context.Background(), "read a\necho \"got $a\"\n", strPtr("hello\n"))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !outcome.Success() {
		t.Fatalf("Expected success, got exit=%d timedOut=%v stderr=%q", outcome.ExitCode, outcome.TimedOut, outcome.Stderr)
	}
	if outcome.Stdout != "got hello\n" {
		t.Errorf("Expected stdout 'got hello\\n', got %q", outcome.Stdout)
	}
	assertDirEmpty(t, r.TempDir)
}

func TestInterpreterRunner_NonZeroExit(t *testing.T) {
	r := newShellRunner(t, 2*time.Second)

	outcome, err := r.Run(context.Background(), "echo oops >&2\nexit 3\n", nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d", outcome.ExitCode)
	}
	if outcome.TimedOut {
		t.Error("Expected not timed out")
	}
	if strings.TrimSpace(outcome.Stderr) != "oops" {
		t.Errorf("Expected stderr 'oops', got %q", outcome.Stderr)
	}
	assertDirEmpty(t, r.TempDir)
}

func TestInterpreterRunner_Timeout(t *testing.T) {
	r := newShellRunner(t, 300*time.Millisecond)

	start := time.Now()
	// 子进程也必须随进程组一起被终止
	outcome, err := r.Run(context.Background(), "sleep 10 &\nsleep 10\n", nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !outcome.TimedOut {
		t.Fatal("Expected timed out")
	}
	if outcome.ExitCode != -1 {
		t.Errorf("Expected exit code -1, got %d", outcome.ExitCode)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Run took too long after timeout: %v", elapsed)
	}
	assertDirEmpty(t, r.TempDir)
}

func TestInterpreterRunner_CallerCancelDoesNotInterrupt(t *testing.T) {
	r := newShellRunner(t, 2*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := r.Run(ctx, "echo done\n", nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !outcome.Success() || outcome.Stdout != "done\n" {
		t.Errorf("Expected normal completion, got exit=%d timedOut=%v stdout=%q", outcome.ExitCode, outcome.TimedOut, outcome.Stdout)
	}
}

// processAlive 进程存在且不是僵尸进程
func processAlive(pid int) bool {
	if err := syscall.Kill(pid, 0); err != nil {
		return false
	}
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return true
	}
	// 状态字段位于进程名右括号之后
	fields := strings.Fields(string(stat[strings.LastIndexByte(string(stat), ')')+1:]))
	return len(fields) == 0 || fields[0] != "Z"
}

func TestInterpreterRunner_BackgroundChildIsKilled(t *testing.T) {
	r := newShellRunner(t, 5*time.Second)
	pidFile := filepath.Join(t.TempDir(), "child.pid")

	program := fmt.Sprintf("sleep 30 >/dev/null 2>&1 &\necho $! > %s\necho hi\n", pidFile)
	outcome, err := r.Run(context.Background(), program, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !outcome.Success() || outcome.Stdout != "hi\n" {
		t.Fatalf("Expected normal completion, got exit=%d stdout=%q", outcome.ExitCode, outcome.Stdout)
	}

	raw, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatalf("Failed to read child pid: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		t.Fatalf("Invalid child pid %q: %v", raw, err)
	}

	// SIGKILL 送达后由 init 回收，给一点时间
	deadline := time.Now().Add(2 * time.Second)
	for processAlive(pid) {
		if time.Now().After(deadline) {
			_ = syscall.Kill(pid, syscall.SIGKILL)
			t.Fatalf("Background child %d still running after Run returned", pid)
		}
		time.Sleep(20 * time.Millisecond)
	}
	assertDirEmpty(t, r.TempDir)
}

func TestInterpreterRunner_AbsentStdin(t *testing.T) {
	r := newShellRunner(t, 2*time.Second)

	outcome, err := r.Run(context.Background(), "cat | wc -c\n", nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if strings.TrimSpace(outcome.Stdout) != "0" {
		t.Errorf("Expected empty stdin, got %q", outcome.Stdout)
	}
}

func TestInterpreterRunner_OutputLimit(t *testing.T) {
	r := newShellRunner(t, 2*time.Second)
	r.MaxOutputSize = 16

	outcome, err := r.Run(context.Background(), "i=0\nwhile [ $i -lt 100 ]; do echo 0123456789; i=$((i+1)); done\n", nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(outcome.Stdout) != 16 {
		t.Errorf("Expected stdout truncated to 16 bytes, got %d", len(outcome.Stdout))
	}
	if !outcome.Success() {
		t.Errorf("Expected success after truncation, got exit=%d", outcome.ExitCode)
	}
}

func TestInterpreterRunner_InterpreterNotFound(t *testing.T) {
	dir := t.TempDir()
	r := &InterpreterRunner{
		Interpreter:   "edunexus-no-such-interpreter",
		Timeout:       time.Second,
		TempDir:       dir,
		MaxOutputSize: 1024,
	}

	outcome, err := r.Run(context.Background(), "print(1)", nil)
	if err == nil {
		t.Fatal("Expected harness error")
	}
	if outcome != nil {
		t.Errorf("Expected nil outcome, got %+v", outcome)
	}
	if !judgeErrors.IsErrorCode(err, judgeErrors.ErrCodeHarness) {
		t.Errorf("Expected ErrCodeHarness, got %v", err)
	}
	assertDirEmpty(t, dir)
}

func TestInterpreterRunner_TempDirMissing(t *testing.T) {
	r := &InterpreterRunner{
		Interpreter:   "sh",
		Timeout:       time.Second,
		TempDir:       "/nonexistent/edunexus-judge",
		MaxOutputSize: 1024,
	}

	_, err := r.Run(context.Background(), "echo 1", nil)
	if !judgeErrors.IsErrorCode(err, judgeErrors.ErrCodeHarness) {
		t.Errorf("Expected ErrCodeHarness, got %v", err)
	}
}

// TestInterpreterRunner_PythonSum 两数求和程序
func TestInterpreterRunner_PythonSum(t *testing.T) {
	r := newPythonRunner(t)

	program := "a, b = map(int, input().split())\nprint(a + b)\n"
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"正数", "2 3\n", "5"},
		{"负数", "-4 1\n", "-3"},
		{"零", "0 0\n", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := r.Run(context.Background(), program, strPtr(tt.input))
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if got := strings.TrimSpace(outcome.Stdout); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
	assertDirEmpty(t, r.TempDir)
}

func TestInterpreterRunner_PythonException(t *testing.T) {
	r := newPythonRunner(t)

	outcome, err := r.Run(context.Background(), "raise ValueError('boom')\n", nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.ExitCode == 0 {
		t.Error("Expected non-zero exit code")
	}
	if !strings.Contains(outcome.Stderr, "ValueError") {
		t.Errorf("Expected traceback in stderr, got %q", outcome.Stderr)
	}
}

func TestLimitedBuffer(t *testing.T) {
	b := newLimitedBuffer(5)
	n, err := b.Write([]byte("abc"))
	if err != nil || n != 3 {
		t.Fatalf("Write returned n=%d err=%v", n, err)
	}
	n, err = b.Write([]byte("defgh"))
	if err != nil || n != 5 {
		t.Fatalf("Write returned n=%d err=%v", n, err)
	}
	if b.String() != "abcde" {
		t.Errorf("Expected 'abcde', got %q", b.String())
	}
	if !b.Truncated() {
		t.Error("Expected truncated")
	}
}

func TestNewInterpreterRunner_Defaults(t *testing.T) {
	r := NewInterpreterRunner(&conf.JudgeConfig{})
	if r.Interpreter != constants.DefaultInterpreter {
		t.Errorf("Expected default interpreter, got %q", r.Interpreter)
	}
	if r.Timeout != constants.DefaultRunTimeout {
		t.Errorf("Expected default timeout, got %v", r.Timeout)
	}
	if r.MaxOutputSize != constants.MaxOutputSize {
		t.Errorf("Expected default output size, got %d", r.MaxOutputSize)
	}
}

package runner

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/s-dudhiya/EduNexus/internal/conf"
	"github.com/s-dudhiya/EduNexus/internal/constants"
	judgeErrors "github.com/s-dudhiya/EduNexus/pkg/errors"
	"go.uber.org/zap"
)

// InterpreterRunner 将程序文本写入临时文件，交给解释器运行
type InterpreterRunner struct {
	Interpreter   string
	Args          []string // 位于程序文件之前的解释器参数
	Timeout       time.Duration
	TempDir       string
	MaxOutputSize int64
}

// NewInterpreterRunner 根据评测配置创建运行器
func NewInterpreterRunner(cfg *conf.JudgeConfig) *InterpreterRunner {
	r := &InterpreterRunner{
		Interpreter:   cfg.Interpreter,
		Args:          cfg.InterpreterArgs,
		Timeout:       cfg.Timeout,
		TempDir:       cfg.TempDir,
		MaxOutputSize: cfg.MaxOutputSize,
	}
	def := conf.GetDefaultJudgeConfig()
	if r.Interpreter == "" {
		r.Interpreter = def.Interpreter
	}
	if r.Timeout <= 0 {
		r.Timeout = def.Timeout
	}
	if r.MaxOutputSize <= 0 {
		r.MaxOutputSize = def.MaxOutputSize
	}
	return r
}

// Run 运行一次程序。超时只由 Timeout 决定，调用方的取消不会中断正在运行的测试用例
func (r *InterpreterRunner) Run(ctx context.Context, program string, stdin *string) (*Outcome, error) {
	art, err := newArtifact(r.TempDir, program)
	if err != nil {
		return nil, judgeErrors.NewHarnessError("无法创建临时程序文件", err)
	}
	defer art.Release()

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.Timeout)
	defer cancel()

	args := make([]string, 0, len(r.Args)+1)
	args = append(args, r.Args...)
	args = append(args, art.Path())

	cmd := exec.CommandContext(runCtx, r.Interpreter, args...)
	cmd.Dir = filepath.Dir(art.Path())
	// 独立进程组，超时时连同子进程一起终止
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	var timedOut atomic.Bool
	cmd.Cancel = func() error {
		timedOut.Store(true)
		return killProcessGroup(cmd)
	}
	cmd.WaitDelay = constants.KillWaitDelay

	if stdin != nil {
		cmd.Stdin = strings.NewReader(*stdin)
	}
	stdout := newLimitedBuffer(r.MaxOutputSize)
	stderr := newLimitedBuffer(r.MaxOutputSize)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	startTime := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, judgeErrors.NewHarnessError("无法启动解释器进程", err)
	}
	// 主进程退出后仍可能留有后台子进程，结束时一律回收整个进程组
	defer releaseProcessGroup(cmd)
	waitErr := cmd.Wait()
	duration := time.Since(startTime)

	outcome := &Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		TimedOut: timedOut.Load(),
		Duration: duration,
	}
	if outcome.TimedOut {
		outcome.ExitCode = -1
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) && !outcome.TimedOut {
		zap.L().Error("等待解释器进程异常", zap.Error(waitErr))
		return nil, judgeErrors.NewHarnessError("等待解释器进程失败", waitErr)
	}

	if stdout.Truncated() || stderr.Truncated() {
		zap.L().Warn("程序输出超过上限，已截断", zap.Int64("max_output_size", r.MaxOutputSize))
	}
	zap.L().Debug("程序运行结束",
		zap.Int("exit_code", outcome.ExitCode),
		zap.Bool("timed_out", outcome.TimedOut),
		zap.Duration("duration", duration),
		zap.String("stderr", sanitizeError(outcome.Stderr)),
	)
	return outcome, nil
}

// killProcessGroup 强制终止整个进程组
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}

// releaseProcessGroup 回收进程组中残留的子进程，进程组已不存在时忽略
func releaseProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		zap.L().Warn("回收进程组失败", zap.Int("pgid", cmd.Process.Pid), zap.Error(err))
	}
}

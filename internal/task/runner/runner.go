package runner

import (
	"context"
	"time"
)

// Outcome 单次运行结果，折叠进评测结论后即丢弃
type Outcome struct {
	Stdout   string
	Stderr   string
	ExitCode int  // 被信号终止或超时时为 -1
	TimedOut bool // 超过墙钟时间被强制终止
	Duration time.Duration
}

// Success 进程正常退出且退出码为 0
func (o *Outcome) Success() bool {
	return !o.TimedOut && o.ExitCode == 0
}

// Runner 运行一段程序文本。程序本身的失败（非零退出、超时）通过 Outcome 返回；
// 返回 error 只表示评测环境无法运行程序（创建临时文件或启动进程失败）
type Runner interface {
	Run(ctx context.Context, program string, stdin *string) (*Outcome, error)
}

// RunnerFunc 便于用函数实现 Runner
type RunnerFunc func(ctx context.Context, program string, stdin *string) (*Outcome, error)

func (f RunnerFunc) Run(ctx context.Context, program string, stdin *string) (*Outcome, error) {
	return f(ctx, program, stdin)
}

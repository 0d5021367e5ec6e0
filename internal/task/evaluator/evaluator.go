package evaluator

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/s-dudhiya/EduNexus/internal/constants"
	"github.com/s-dudhiya/EduNexus/internal/model"
	"github.com/s-dudhiya/EduNexus/internal/task/result"
	"github.com/s-dudhiya/EduNexus/internal/task/runner"
	judgeErrors "github.com/s-dudhiya/EduNexus/pkg/errors"
	"go.uber.org/zap"
)

// Evaluator 依次运行测试用例，遇到第一个失败即停止
type Evaluator struct {
	runner     runner.Runner
	comparator *result.Comparator
}

func NewEvaluator(r runner.Runner, c *result.Comparator) *Evaluator {
	if c == nil {
		c = result.NewComparator(constants.CompareModeTrim)
	}
	return &Evaluator{
		runner:     r,
		comparator: c,
	}
}

// Evaluate 对程序评测全部测试用例。
// 载荷不是数组时返回数据完整性错误；评测环境故障时同时返回失败结论和错误
func (e *Evaluator) Evaluate(ctx context.Context, program string, cases model.TestCaseSet) (*model.GradeVerdict, error) {
	stream, err := newCaseStream(cases)
	if err != nil {
		return nil, judgeErrors.NewDataIntegrityError("测试用例数据格式错误", err)
	}
	defer stream.Stop()

	verdict := model.NewPassingVerdict()
	for {
		item, ok := stream.Next()
		if !ok {
			break
		}

		if item.Err != nil {
			// 只有第 0 个用例的描述进入结论，其余只记日志
			if item.Index == 0 {
				verdict.FirstError = fmt.Sprintf("malformed test case %d: %v", item.Index, item.Err)
			}
			fail(verdict, item.Index, constants.ReasonMalformedCase)
			zap.L().Warn("测试用例格式错误", zap.Int("case", item.Index), zap.Error(item.Err))
			break
		}

		outcome, err := e.runner.Run(ctx, program, item.Case.Stdin())
		if err != nil {
			fail(verdict, item.Index, constants.ReasonHarnessFailure)
			zap.L().Error("评测环境故障", zap.Int("case", item.Index), zap.Error(err))
			return verdict, err
		}
		verdict.CasesRun++

		if item.Index == 0 {
			verdict.FirstOutput = trimTrailing(outcome.Stdout)
			verdict.FirstError = trimTrailing(outcome.Stderr)
		}

		if reason := e.judge(outcome, item.Case.Expected()); reason != "" {
			fail(verdict, item.Index, reason)
			zap.L().Debug("测试用例未通过",
				zap.Int("case", item.Index),
				zap.String("reason", reason),
				zap.String("output", truncate(outcome.Stdout)),
			)
			break
		}
	}

	zap.L().Debug("评测结束",
		zap.Bool("passed", verdict.Passed),
		zap.Int("cases", stream.Len()),
		zap.Int("cases_run", verdict.CasesRun),
	)
	return verdict, nil
}

// judge 判断单个测试用例，通过时返回空串，否则返回失败原因
func (e *Evaluator) judge(outcome *runner.Outcome, expected string) string {
	switch {
	case outcome.TimedOut:
		return constants.ReasonTimeout
	case outcome.ExitCode != 0:
		return constants.ReasonNonZeroExit
	case !e.comparator.Compare(outcome.Stdout, expected):
		return constants.ReasonWrongAnswer
	default:
		return ""
	}
}

func fail(verdict *model.GradeVerdict, index int, reason string) {
	verdict.Passed = false
	verdict.FailedCase = index
	verdict.Reason = reason
}

// trimTrailing 去掉末尾换行等空白，开头保持原样
func trimTrailing(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

func truncate(s string) string {
	if len(s) > constants.MaxLogOutput {
		return s[:constants.MaxLogOutput] + "..."
	}
	return s
}

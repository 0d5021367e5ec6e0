package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/s-dudhiya/EduNexus/internal/constants"
	"github.com/s-dudhiya/EduNexus/internal/model"
	"github.com/s-dudhiya/EduNexus/internal/task/evaluator"
	"github.com/s-dudhiya/EduNexus/internal/task/result"
	"github.com/s-dudhiya/EduNexus/internal/task/runner"
	judgeErrors "github.com/s-dudhiya/EduNexus/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaperStore struct {
	papers map[int64]model.TestCaseSet
	err    error
	calls  int
}

func (s *fakePaperStore) GetTestCases(_ context.Context, id int64) (model.TestCaseSet, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	cases, ok := s.papers[id]
	if !ok {
		return nil, judgeErrors.NewNotFoundError("exam paper", id)
	}
	return cases, nil
}

type fakeResultStore struct {
	saved []*model.ExamResult
	err   error
}

func (s *fakeResultStore) CreateExamResult(_ context.Context, r *model.ExamResult) error {
	if s.err != nil {
		return s.err
	}
	r.ID = int64(len(s.saved) + 1)
	s.saved = append(s.saved, r)
	return nil
}

type fakeEvaluator struct {
	verdict *model.GradeVerdict
	err     error
	panic   bool
	calls   int
}

func (e *fakeEvaluator) Evaluate(_ context.Context, _ string, _ model.TestCaseSet) (*model.GradeVerdict, error) {
	e.calls++
	if e.panic {
		panic("evaluator exploded")
	}
	return e.verdict, e.err
}

func TestGrade_InvalidParams(t *testing.T) {
	tests := []struct {
		name string
		sub  *model.Submission
	}{
		{"空提交", nil},
		{"代码为空", &model.Submission{ExamPaperID: 1}},
		{"试卷编号缺失", &model.Submission{SourceText: "print(1)"}},
		{"试卷编号为负", &model.Submission{SourceText: "print(1)", ExamPaperID: -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			papers := &fakePaperStore{}
			eval := &fakeEvaluator{}
			svc := NewGradeService(papers, &fakeResultStore{}, eval)

			verdict, err := svc.Grade(context.Background(), tt.sub)
			assert.Nil(t, verdict)
			assert.True(t, judgeErrors.IsErrorCode(err, judgeErrors.ErrCodeInvalidParam), "got %v", err)
			assert.Zero(t, papers.calls)
			assert.Zero(t, eval.calls)
		})
	}
}

func TestGrade_UnknownPaperNeverEvaluates(t *testing.T) {
	papers := &fakePaperStore{papers: map[int64]model.TestCaseSet{}}
	eval := &fakeEvaluator{verdict: model.NewPassingVerdict()}
	svc := NewGradeService(papers, &fakeResultStore{}, eval)

	verdict, err := svc.Grade(context.Background(), &model.Submission{SourceText: "print(1)", ExamPaperID: 404})
	assert.Nil(t, verdict)
	assert.True(t, judgeErrors.IsErrorCode(err, judgeErrors.ErrCodeNotFound))
	assert.Zero(t, eval.calls)
}

func TestGrade_StoreFailureIsOpaque(t *testing.T) {
	papers := &fakePaperStore{err: errors.New("dial tcp 127.0.0.1:5432: connection refused")}
	svc := NewGradeService(papers, &fakeResultStore{}, &fakeEvaluator{})

	_, err := svc.Grade(context.Background(), &model.Submission{SourceText: "print(1)", ExamPaperID: 1})
	judgeErr, ok := judgeErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, judgeErrors.ErrCodeExecution, judgeErr.Code)
	assert.Equal(t, "代码执行失败", judgeErr.Message)
}

func TestGrade_EvaluatorErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode judgeErrors.ErrorCode
	}{
		{"评测环境故障", judgeErrors.NewHarnessError("无法启动解释器进程", errors.New("not found")), judgeErrors.ErrCodeHarness},
		{"数据格式错误", judgeErrors.NewDataIntegrityError("测试用例数据格式错误", model.ErrTestCaseSetNotArray), judgeErrors.ErrCodeDataIntegrity},
		{"未知错误", errors.New("unexpected"), judgeErrors.ErrCodeExecution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			papers := &fakePaperStore{papers: map[int64]model.TestCaseSet{1: model.TestCaseSet(`[]`)}}
			svc := NewGradeService(papers, &fakeResultStore{}, &fakeEvaluator{err: tt.err})

			verdict, err := svc.Grade(context.Background(), &model.Submission{SourceText: "print(1)", ExamPaperID: 1})
			assert.Nil(t, verdict)
			assert.Equal(t, tt.wantCode, judgeErrors.GetErrorCode(err))
		})
	}
}

func TestGrade_RecoversPanic(t *testing.T) {
	papers := &fakePaperStore{papers: map[int64]model.TestCaseSet{1: model.TestCaseSet(`[]`)}}
	svc := NewGradeService(papers, &fakeResultStore{}, &fakeEvaluator{panic: true})

	verdict, err := svc.Grade(context.Background(), &model.Submission{SourceText: "print(1)", ExamPaperID: 1})
	assert.Nil(t, verdict)
	assert.True(t, judgeErrors.IsErrorCode(err, judgeErrors.ErrCodeExecution))
	assert.NotContains(t, err.(*judgeErrors.JudgeError).Message, "exploded")
}

func TestGrade_ReturnsVerdictUnchanged(t *testing.T) {
	want := &model.GradeVerdict{Passed: false, FirstOutput: "goodbye", FailedCase: 0, Reason: constants.ReasonWrongAnswer, CasesRun: 1}
	papers := &fakePaperStore{papers: map[int64]model.TestCaseSet{7: model.TestCaseSet(`[{"input":"","output":"hello"}]`)}}
	svc := NewGradeService(papers, &fakeResultStore{}, &fakeEvaluator{verdict: want})

	verdict, err := svc.Grade(context.Background(), &model.Submission{SourceText: `print("goodbye")`, ExamPaperID: 7})
	require.NoError(t, err)
	assert.Same(t, want, verdict)
}

func TestGrade_WithEvaluatorIsIdempotent(t *testing.T) {
	calls := 0
	fake := runner.RunnerFunc(func(_ context.Context, _ string, stdin *string) (*runner.Outcome, error) {
		calls++
		return &runner.Outcome{Stdout: strings.ToUpper(*stdin)}, nil
	})
	papers := &fakePaperStore{papers: map[int64]model.TestCaseSet{
		3: model.TestCaseSet(`[{"input":"a","output":"A"},{"input":"b","output":"x"},{"input":"c","output":"C"}]`),
	}}
	eval := evaluator.NewEvaluator(fake, result.NewComparator(constants.CompareModeTrim))
	svc := NewGradeService(papers, &fakeResultStore{}, eval)
	sub := &model.Submission{SourceText: "print(input().upper())", ExamPaperID: 3}

	first, err := svc.Grade(context.Background(), sub)
	require.NoError(t, err)
	second, err := svc.Grade(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.False(t, first.Passed)
	assert.Equal(t, "A", first.FirstOutput)
	assert.Equal(t, 1, first.FailedCase)
	// 每次评测只运行前两个用例
	assert.Equal(t, 4, calls)
}

func TestRecordResult(t *testing.T) {
	valid := func() *model.ExamResult {
		return &model.ExamResult{EnrollmentNo: 220101, SubjectID: 3, CodeMarks: 10, McqMarks: 18, TestName: "Mid Sem"}
	}

	t.Run("保存成功", func(t *testing.T) {
		results := &fakeResultStore{}
		svc := NewGradeService(&fakePaperStore{}, results, &fakeEvaluator{})

		require.NoError(t, svc.RecordResult(context.Background(), valid()))
		require.NoError(t, svc.RecordResult(context.Background(), valid()))
		// 不做唯一性检查
		assert.Len(t, results.saved, 2)
		assert.Equal(t, "Mid Sem", results.saved[0].TestName)
	})

	invalid := []struct {
		name   string
		mutate func(r *model.ExamResult)
	}{
		{"学号缺失", func(r *model.ExamResult) { r.EnrollmentNo = 0 }},
		{"科目缺失", func(r *model.ExamResult) { r.SubjectID = 0 }},
		{"编程分为负", func(r *model.ExamResult) { r.CodeMarks = -1 }},
		{"选择题分为负", func(r *model.ExamResult) { r.McqMarks = -1 }},
		{"考试名称为空", func(r *model.ExamResult) { r.TestName = "" }},
		{"考试名称过长", func(r *model.ExamResult) { r.TestName = strings.Repeat("x", 51) }},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			results := &fakeResultStore{}
			svc := NewGradeService(&fakePaperStore{}, results, &fakeEvaluator{})
			r := valid()
			tt.mutate(r)

			err := svc.RecordResult(context.Background(), r)
			assert.True(t, judgeErrors.IsErrorCode(err, judgeErrors.ErrCodeInvalidParam), "got %v", err)
			assert.Empty(t, results.saved)
		})
	}

	t.Run("存储校验失败", func(t *testing.T) {
		results := &fakeResultStore{err: judgeErrors.NewInvalidParamError("test_name", "too long")}
		svc := NewGradeService(&fakePaperStore{}, results, &fakeEvaluator{})
		err := svc.RecordResult(context.Background(), valid())
		assert.True(t, judgeErrors.IsErrorCode(err, judgeErrors.ErrCodeInvalidParam))
	})

	t.Run("存储异常", func(t *testing.T) {
		results := &fakeResultStore{err: errors.New("connection reset")}
		svc := NewGradeService(&fakePaperStore{}, results, &fakeEvaluator{})
		err := svc.RecordResult(context.Background(), valid())
		assert.True(t, judgeErrors.IsErrorCode(err, judgeErrors.ErrCodeExecution))
	})
}

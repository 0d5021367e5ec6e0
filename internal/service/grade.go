package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"unicode/utf8"

	"github.com/s-dudhiya/EduNexus/internal/constants"
	"github.com/s-dudhiya/EduNexus/internal/model"
	judgeErrors "github.com/s-dudhiya/EduNexus/pkg/errors"
	"github.com/s-dudhiya/EduNexus/pkg/snowflake"
	"go.uber.org/zap"
)

// PaperStore 按试卷编号取测试用例载荷，试卷不存在时返回 ErrCodeNotFound
type PaperStore interface {
	GetTestCases(ctx context.Context, examPaperID int64) (model.TestCaseSet, error)
}

// ResultStore 保存考试成绩
type ResultStore interface {
	CreateExamResult(ctx context.Context, result *model.ExamResult) error
}

// Evaluator 对程序评测一组测试用例
type Evaluator interface {
	Evaluate(ctx context.Context, program string, cases model.TestCaseSet) (*model.GradeVerdict, error)
}

// GradeService 评测协调：取测试用例、调用评测器、记录成绩。不持有可变状态
type GradeService struct {
	papers    PaperStore
	results   ResultStore
	evaluator Evaluator
}

func NewGradeService(papers PaperStore, results ResultStore, evaluator Evaluator) *GradeService {
	return &GradeService{
		papers:    papers,
		results:   results,
		evaluator: evaluator,
	}
}

// Grade 评测一次提交
func (s *GradeService) Grade(ctx context.Context, sub *model.Submission) (verdict *model.GradeVerdict, err error) {
	if sub == nil {
		return nil, judgeErrors.NewInvalidParamError("submission", "不能为空")
	}
	if sub.SourceText == "" {
		return nil, judgeErrors.NewInvalidParamError("code", "代码不能为空")
	}
	if sub.ExamPaperID <= 0 {
		return nil, judgeErrors.NewInvalidParamError("exam_paper_id", "必须为正整数")
	}

	gradeID, idErr := snowflake.NextID()
	if idErr != nil {
		zap.L().Warn("生成评测编号失败", zap.Error(idErr))
	}
	logger := zap.L().With(zap.Int64("grade_id", gradeID), zap.Int64("exam_paper_id", sub.ExamPaperID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("评测过程发生panic",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
			verdict = nil
			err = judgeErrors.NewExecutionError(fmt.Errorf("panic: %v", r))
		}
	}()

	cases, err := s.papers.GetTestCases(ctx, sub.ExamPaperID)
	if err != nil {
		switch judgeErrors.GetErrorCode(err) {
		case judgeErrors.ErrCodeNotFound, judgeErrors.ErrCodeDataIntegrity:
			logger.Info("获取测试用例失败", zap.Error(err))
			return nil, err
		default:
			logger.Error("获取测试用例异常", zap.Error(err))
			return nil, judgeErrors.NewExecutionError(err)
		}
	}

	logger.Info("开始评测", zap.Int("code_size", len(sub.SourceText)))
	verdict, err = s.evaluator.Evaluate(ctx, sub.SourceText, cases)
	if err != nil {
		switch judgeErrors.GetErrorCode(err) {
		case judgeErrors.ErrCodeHarness, judgeErrors.ErrCodeDataIntegrity:
			logger.Error("评测失败", zap.Error(err))
			return nil, err
		default:
			logger.Error("评测异常", zap.Error(err))
			return nil, judgeErrors.NewExecutionError(err)
		}
	}

	logger.Info("评测完成",
		zap.Bool("passed", verdict.Passed),
		zap.Int("failed_case", verdict.FailedCase),
		zap.String("reason", verdict.Reason),
		zap.Int("cases_run", verdict.CasesRun),
	)
	return verdict, nil
}

// RecordResult 原样保存成绩，不做唯一性检查
func (s *GradeService) RecordResult(ctx context.Context, result *model.ExamResult) error {
	if err := validateExamResult(result); err != nil {
		return err
	}

	if err := s.results.CreateExamResult(ctx, result); err != nil {
		if judgeErrors.IsErrorCode(err, judgeErrors.ErrCodeInvalidParam) {
			return err
		}
		zap.L().Error("保存考试成绩失败",
			zap.Int64("enrollment_no", result.EnrollmentNo),
			zap.Int64("subject_id", result.SubjectID),
			zap.Error(err),
		)
		return judgeErrors.NewExecutionError(err)
	}

	zap.L().Info("保存考试成绩",
		zap.Int64("id", result.ID),
		zap.Int64("enrollment_no", result.EnrollmentNo),
		zap.Int64("subject_id", result.SubjectID),
		zap.String("test_name", result.TestName),
	)
	return nil
}

func validateExamResult(result *model.ExamResult) error {
	switch {
	case result == nil:
		return judgeErrors.NewInvalidParamError("result", "不能为空")
	case result.EnrollmentNo <= 0:
		return judgeErrors.NewInvalidParamError("enrollment_no", "必须为正整数")
	case result.SubjectID <= 0:
		return judgeErrors.NewInvalidParamError("subject_id", "必须为正整数")
	case result.CodeMarks < 0:
		return judgeErrors.NewInvalidParamError("code_marks", "不能为负数")
	case result.McqMarks < 0:
		return judgeErrors.NewInvalidParamError("mcq_marks", "不能为负数")
	case result.TestName == "":
		return judgeErrors.NewInvalidParamError("test_name", "不能为空")
	case utf8.RuneCountInString(result.TestName) > constants.ExamTestNameMaxLen:
		return judgeErrors.NewInvalidParamError("test_name", fmt.Sprintf("长度不能超过%d", constants.ExamTestNameMaxLen))
	}
	return nil
}

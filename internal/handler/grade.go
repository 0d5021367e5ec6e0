package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/s-dudhiya/EduNexus/api"
	v1 "github.com/s-dudhiya/EduNexus/api/exam/v1"
	"github.com/s-dudhiya/EduNexus/internal/constants"
	"github.com/s-dudhiya/EduNexus/internal/middleware"
	"github.com/s-dudhiya/EduNexus/internal/model"
	"github.com/s-dudhiya/EduNexus/internal/service"
	judgeErrors "github.com/s-dudhiya/EduNexus/pkg/errors"
	"go.uber.org/zap"
)

// Grader 评测协调接口，*service.GradeService 满足该接口
type Grader interface {
	Grade(ctx context.Context, sub *model.Submission) (*model.GradeVerdict, error)
	RecordResult(ctx context.Context, result *model.ExamResult) error
}

// GradeHandler 评测与成绩相关接口，统计只在这一层记录
type GradeHandler struct {
	grader  Grader
	metrics *service.GradeMetrics
}

func NewGradeHandler(grader Grader, metrics *service.GradeMetrics) *GradeHandler {
	return &GradeHandler{grader: grader, metrics: metrics}
}

func init() {
	// 校验错误使用 json 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// GradeSubmissionHandler 学生提交代码评测
func (h *GradeHandler) GradeSubmissionHandler(c *gin.Context) {
	var req v1.GradeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Info("grade-submission bind json failed", zap.Error(err))
		api.ResponseError(c, api.CodeInvalidParam)
		return
	}
	h.grade(c, &model.Submission{SourceText: req.Code, ExamPaperID: req.ExamPaperID})
}

// DryRunHandler 教师用参考代码试跑试卷的测试用例
func (h *GradeHandler) DryRunHandler(c *gin.Context) {
	examPaperID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || examPaperID <= 0 {
		api.ResponseError(c, api.CodeInvalidParam)
		return
	}
	var req v1.DryRunReq
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Info("dry-run bind json failed", zap.Error(err))
		api.ResponseError(c, api.CodeInvalidParam)
		return
	}
	h.grade(c, &model.Submission{SourceText: req.Code, ExamPaperID: examPaperID})
}

func (h *GradeHandler) grade(c *gin.Context, sub *model.Submission) {
	p, _ := middleware.GetPrincipal(c)

	h.metrics.RecordSubmission()
	h.metrics.RecordActiveIncrease()
	defer h.metrics.RecordActiveDecrease()

	start := time.Now()
	verdict, err := h.grader.Grade(c.Request.Context(), sub)
	elapsed := time.Since(start)
	if err != nil {
		h.metrics.RecordError(elapsed, errorReason(err))
		code := api.FromError(err)
		zap.L().Warn("grade-submission failed",
			zap.Int64("user_id", p.UserID),
			zap.String("role", string(p.Role)),
			zap.Int64("exam_paper_id", sub.ExamPaperID),
			zap.Int64("res_code", int64(code)),
			zap.Error(err),
		)
		api.ResponseError(c, code)
		return
	}

	h.metrics.RecordVerdict(elapsed, verdict.Passed, verdict.Reason)
	zap.L().Info("grade-submission",
		zap.Int64("user_id", p.UserID),
		zap.String("role", string(p.Role)),
		zap.Int64("exam_paper_id", sub.ExamPaperID),
		zap.Bool("passed", verdict.Passed),
		zap.Duration("cost", elapsed),
	)
	api.ResponseSuccess(c, v1.GradeResp{
		Output: verdict.FirstOutput,
		Error:  verdict.FirstError,
		Passed: verdict.Passed,
	})
}

// RecordExamResultHandler 保存考试成绩
func (h *GradeHandler) RecordExamResultHandler(c *gin.Context) {
	var req v1.ExamResultReq
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Info("record-exam-result bind json failed", zap.Error(err))
		api.ResponseErrorWithData(c, api.CodeInvalidParam, fieldErrors(err))
		return
	}

	result := &model.ExamResult{
		EnrollmentNo: req.EnrollmentNo,
		SubjectID:    req.SubjectID,
		CodeMarks:    *req.CodeMarks,
		McqMarks:     *req.McqMarks,
		TestName:     req.TestName,
	}
	if err := h.grader.RecordResult(c.Request.Context(), result); err != nil {
		code := api.FromError(err)
		zap.L().Warn("record-exam-result failed", zap.Int64("res_code", int64(code)), zap.Error(err))
		if je, ok := judgeErrors.As(err); ok && code == api.CodeInvalidParam {
			api.ResponseErrorWithData(c, code, map[string]string{"non_field_errors": je.Message})
			return
		}
		api.ResponseError(c, code)
		return
	}

	h.metrics.RecordResultSaved()
	api.ResponseSuccess(c, v1.ExamResultResp{Status: "success"})
}

// errorReason 错误请求的统计标签
func errorReason(err error) string {
	switch judgeErrors.GetErrorCode(err) {
	case judgeErrors.ErrCodeHarness:
		return constants.ReasonHarnessFailure
	case judgeErrors.ErrCodeNotFound:
		return "not_found"
	case judgeErrors.ErrCodeInvalidParam:
		return "invalid_param"
	case judgeErrors.ErrCodeDataIntegrity:
		return "data_integrity"
	default:
		return "execution"
	}
}

// fieldErrors 将绑定错误转换为 字段 -> 提示信息
func fieldErrors(err error) map[string]string {
	fields := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields[typeErr.Field] = fmt.Sprintf("类型错误，应为%s", typeErr.Type.String())
		return fields
	}

	fields["non_field_errors"] = "请求体不是合法的JSON"
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "该字段为必填项"
	case "max":
		return fmt.Sprintf("长度不能超过%s", fe.Param())
	case "gt":
		return fmt.Sprintf("必须大于%s", fe.Param())
	case "gte":
		return fmt.Sprintf("不能小于%s", fe.Param())
	default:
		return fmt.Sprintf("校验失败: %s", fe.Tag())
	}
}

package api

import (
	judgeErrors "github.com/s-dudhiya/EduNexus/pkg/errors"
)

// ResCode 定义返回码类型
type ResCode int64

const (
	CodeSuccess      ResCode = 0
	CodeInvalidParam ResCode = 4000

	CodeNeedLogin     ResCode = 4100
	CodeInvalidToken  ResCode = 4200
	CodeNoPermission  ResCode = 4300
	CodeExamPaperNone ResCode = 4040

	CodeServerBusy      ResCode = 5000
	CodeDataIntegrity   ResCode = 5001
	CodeHarnessFailure  ResCode = 5002
	CodeExecutionFailed ResCode = 5003
	CodeInternalError   ResCode = 5004
)

var codeMsgMap = map[ResCode]string{
	CodeSuccess:      "success",
	CodeInvalidParam: "请求参数错误",

	CodeNeedLogin:     "需要登录",
	CodeInvalidToken:  "无效的token",
	CodeNoPermission:  "无权访问",
	CodeExamPaperNone: "试卷不存在",

	CodeServerBusy:      "服务繁忙",
	CodeDataIntegrity:   "试卷测试用例数据异常",
	CodeHarnessFailure:  "评测环境异常，无法运行代码",
	CodeExecutionFailed: "代码执行失败",
	CodeInternalError:   "服务内部错误",
}

func (c ResCode) Msg() string {
	msg, ok := codeMsgMap[c]
	if !ok {
		msg = codeMsgMap[CodeServerBusy]
	}
	return msg
}

// FromError 将评测错误映射为返回码，未知错误一律按执行失败处理
func FromError(err error) ResCode {
	switch judgeErrors.GetErrorCode(err) {
	case judgeErrors.ErrCodeInvalidParam:
		return CodeInvalidParam
	case judgeErrors.ErrCodeNotFound:
		return CodeExamPaperNone
	case judgeErrors.ErrCodeDataIntegrity:
		return CodeDataIntegrity
	case judgeErrors.ErrCodeHarness:
		return CodeHarnessFailure
	case judgeErrors.ErrCodeStorage:
		return CodeInternalError
	default:
		return CodeExecutionFailed
	}
}

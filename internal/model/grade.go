package model

// Submission 一次评测请求，只在请求期间存在
type Submission struct {
	SourceText  string
	ExamPaperID int64
}

// GradeVerdict 评测结论。FirstOutput/FirstError 始终是第 0 个测试用例的实际输出
type GradeVerdict struct {
	Passed      bool   `json:"passed"`
	FirstOutput string `json:"output"`
	FirstError  string `json:"error"`

	// 以下字段只用于日志
	FailedCase int    `json:"-"` // 首个失败的测试用例下标，-1 表示没有失败
	Reason     string `json:"-"`
	CasesRun   int    `json:"-"`
}

// NewPassingVerdict 空测试用例集合或全部通过时的初始结论
func NewPassingVerdict() *GradeVerdict {
	return &GradeVerdict{
		Passed:     true,
		FailedCase: -1,
	}
}

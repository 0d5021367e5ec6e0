package v1

// GradeReq 提交代码评测请求
type GradeReq struct {
	Code        string `json:"code" binding:"required"`
	ExamPaperID int64  `json:"exam_paper_id" binding:"required,gt=0"`
}

// GradeResp 评测结果，output/error 均为第 0 个测试用例的实际输出
type GradeResp struct {
	Output string `json:"output"`
	Error  string `json:"error"`
	Passed bool   `json:"passed"`
}

// DryRunReq 教师试跑请求，试卷编号取自路径
type DryRunReq struct {
	Code string `json:"code" binding:"required"`
}

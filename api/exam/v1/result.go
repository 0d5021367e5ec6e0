package v1

// ExamResultReq 保存考试成绩请求，分数由客户端统计
type ExamResultReq struct {
	EnrollmentNo int64  `json:"enrollment_no" binding:"required,gt=0"`
	SubjectID    int64  `json:"subject_id" binding:"required,gt=0"`
	CodeMarks    *int   `json:"code_marks" binding:"required,gte=0"`
	McqMarks     *int   `json:"mcq_marks" binding:"required,gte=0"`
	TestName     string `json:"test_name" binding:"required,max=50"`
}

// ExamResultResp 保存成功
type ExamResultResp struct {
	Status string `json:"status"`
}

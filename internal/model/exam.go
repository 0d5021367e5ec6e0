package model

// ExamPaper 试卷，测试用例内联在 TestCases 中；为空时从对象存储 CaseBucket/CaseObject 读取
type ExamPaper struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	SubjectID    int64       `gorm:"index;not null" json:"subject_id"`
	Sem          int         `gorm:"not null;default:7" json:"sem"`
	CodeQuestion string      `gorm:"size:5600" json:"code_question"`
	TestCases    TestCaseSet `json:"test_cases"`
	CaseBucket   string      `gorm:"size:128" json:"case_bucket"`
	CaseObject   string      `gorm:"size:256" json:"case_object"`
}

// ExamResult 考试成绩，每次提交写入一条，不做唯一性约束
type ExamResult struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	EnrollmentNo int64  `gorm:"index;not null" json:"enrollment_no"`
	SubjectID    int64  `gorm:"index;not null" json:"subject_id"`
	CodeMarks    int    `gorm:"not null" json:"code_marks"`
	McqMarks     int    `gorm:"not null" json:"mcq_marks"`
	TestName     string `gorm:"size:50;not null" json:"test_name"`
}

package dao

import (
	"context"
	"errors"

	"github.com/s-dudhiya/EduNexus/internal/model"
	judgeErrors "github.com/s-dudhiya/EduNexus/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ObjectDownloader 下载对象存储中的测试用例载荷
type ObjectDownloader interface {
	Download(ctx context.Context, bucket, object string) ([]byte, error)
}

// ExamStore 试卷与成绩的 gorm 存储
type ExamStore struct {
	db      *gorm.DB
	objects ObjectDownloader // 可为 nil，表示未启用对象存储
}

func NewExamStore(db *gorm.DB, objects ObjectDownloader) *ExamStore {
	return &ExamStore{db: db, objects: objects}
}

// GetTestCases 取试卷的测试用例载荷。试卷内联载荷为空且配置了对象位置时，从对象存储读取
func (s *ExamStore) GetTestCases(ctx context.Context, examPaperID int64) (model.TestCaseSet, error) {
	var paper model.ExamPaper
	err := s.db.WithContext(ctx).
		Select("id", "test_cases", "case_bucket", "case_object").
		First(&paper, examPaperID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, judgeErrors.NewNotFoundError("exam paper", examPaperID)
	}
	if err != nil {
		return nil, judgeErrors.NewStorageError("query exam paper fail", err)
	}

	if !paper.TestCases.IsEmpty() || paper.CaseBucket == "" || paper.CaseObject == "" {
		return paper.TestCases, nil
	}
	if s.objects == nil {
		return nil, judgeErrors.NewDataIntegrityError("exam paper stores test cases in object storage but minio is disabled", nil)
	}

	content, err := s.objects.Download(ctx, paper.CaseBucket, paper.CaseObject)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("从对象存储加载测试用例",
		zap.Int64("exam_paper_id", examPaperID),
		zap.String("bucket", paper.CaseBucket),
		zap.String("object", paper.CaseObject),
	)
	return model.TestCaseSet(content), nil
}

// CreateExamResult 插入成绩记录
func (s *ExamStore) CreateExamResult(ctx context.Context, result *model.ExamResult) error {
	err := s.db.WithContext(ctx).Create(result).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrCheckConstraintViolated),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrInvalidData),
		errors.Is(err, gorm.ErrInvalidField):
		return judgeErrors.Wrap(judgeErrors.ErrCodeInvalidParam, "exam result rejected by storage", err)
	default:
		return judgeErrors.NewStorageError("insert exam result fail", err)
	}
}

// CreateExamPaper 插入试卷，供教师端工具与测试使用
func (s *ExamStore) CreateExamPaper(ctx context.Context, paper *model.ExamPaper) error {
	if err := s.db.WithContext(ctx).Create(paper).Error; err != nil {
		return judgeErrors.NewStorageError("insert exam paper fail", err)
	}
	return nil
}

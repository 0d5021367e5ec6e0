package minio

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/s-dudhiya/EduNexus/internal/constants"
	judgeErrors "github.com/s-dudhiya/EduNexus/pkg/errors"
	"go.uber.org/zap"
)

// ObjectGetter 读取对象内容的最小接口
type ObjectGetter interface {
	GetObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error)
}

type clientGetter struct {
	client *minio.Client
}

func (g clientGetter) GetObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	obj, err := g.client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Downloader 从 MinIO 下载试卷的测试用例载荷
type Downloader struct {
	getter  ObjectGetter
	maxSize int64
}

// NewDownloader maxSize 为单个对象的读取上限
func NewDownloader(client *minio.Client, maxSize int64) *Downloader {
	return newDownloader(clientGetter{client: client}, maxSize)
}

func newDownloader(getter ObjectGetter, maxSize int64) *Downloader {
	return &Downloader{getter: getter, maxSize: maxSize}
}

// Download 下载对象内容
// bucket: MinIO 存储桶名称
// object: 对象名称
func (d *Downloader) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	// 1. 参数校验
	if bucket == "" || object == "" {
		return nil, judgeErrors.NewInvalidParamError("bucket/object", "cannot be empty")
	}

	// 2. 创建上下文
	ctx, cancel := context.WithTimeout(ctx, constants.MinioDownloadTimeout)
	defer cancel()

	// 3. 获取对象
	obj, err := d.getter.GetObject(ctx, bucket, object)
	if err != nil {
		return nil, downloadError(bucket, object, "get object fail", err)
	}
	defer obj.Close()

	// 4. 读取对象内容，多读一个字节用于判断是否超限。对象不存在的错误在首次读取时才返回
	content, err := io.ReadAll(io.LimitReader(obj, d.maxSize+1))
	if err != nil {
		return nil, downloadError(bucket, object, "read object content fail", err)
	}
	if int64(len(content)) > d.maxSize {
		return nil, judgeErrors.NewDataIntegrityError(
			fmt.Sprintf("object %s/%s exceeds %d bytes", bucket, object, d.maxSize), nil)
	}

	zap.L().Debug("file download success", zap.String("bucket", bucket), zap.String("object", object), zap.Int("size", len(content)))
	return content, nil
}

// downloadError 对象不存在说明试卷数据不完整，其余为下载失败
func downloadError(bucket, object, message string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return judgeErrors.NewDataIntegrityError(fmt.Sprintf("object %s/%s not found", bucket, object), err)
	}
	return judgeErrors.Wrap(judgeErrors.ErrCodeObjectDownloadFailed, message, err)
}

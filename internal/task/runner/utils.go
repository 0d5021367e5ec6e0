package runner

import (
	"bytes"
	"strings"

	"github.com/s-dudhiya/EduNexus/internal/constants"
)

// limitedBuffer 最多保留 limit 字节，超出部分丢弃但不报错，避免子进程因管道写失败而退出
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func newLimitedBuffer(limit int64) *limitedBuffer {
	return &limitedBuffer{limit: limit}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - int64(b.buf.Len())
	if remaining <= 0 {
		if len(p) > 0 {
			b.truncated = true
		}
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

// String 以文本返回内容，非法 UTF-8 替换为 U+FFFD
func (b *limitedBuffer) String() string {
	return strings.ToValidUTF8(b.buf.String(), "�")
}

func (b *limitedBuffer) Truncated() bool {
	return b.truncated
}

// sanitizeError 清理错误信息
func sanitizeError(errMsg string) string {
	// 限制错误信息大小
	if len(errMsg) > constants.MaxErrorSize {
		return errMsg[:constants.MaxErrorSize] + "..."
	}
	return errMsg
}

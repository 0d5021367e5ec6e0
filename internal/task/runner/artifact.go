package runner

import (
	"fmt"
	"os"

	"github.com/s-dudhiya/EduNexus/internal/constants"
	"go.uber.org/zap"
)

// artifact 单次运行独占的临时程序文件，由 Run 创建并在所有退出路径上释放
type artifact struct {
	path string
}

// newArtifact 在 dir 下创建唯一命名的临时文件并写入程序文本，失败时不留残余
func newArtifact(dir, program string) (*artifact, error) {
	f, err := os.CreateTemp(dir, constants.TempFilePattern)
	if err != nil {
		return nil, fmt.Errorf("创建临时文件失败: %w", err)
	}
	a := &artifact{path: f.Name()}

	if _, err := f.WriteString(program); err != nil {
		_ = f.Close()
		a.Release()
		return nil, fmt.Errorf("写入程序文件失败: %w", err)
	}
	if err := f.Close(); err != nil {
		a.Release()
		return nil, fmt.Errorf("关闭程序文件失败: %w", err)
	}
	if err := os.Chmod(a.path, constants.CodeFilePerm); err != nil {
		a.Release()
		return nil, fmt.Errorf("修改程序文件权限失败: %w", err)
	}

	zap.L().Debug("创建临时程序文件", zap.String("path", a.path))
	return a, nil
}

// Path 临时文件路径
func (a *artifact) Path() string {
	return a.path
}

// Release 删除临时文件，可重复调用
func (a *artifact) Release() {
	if a.path == "" {
		return
	}
	if err := os.Remove(a.path); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("清理临时程序文件失败", zap.String("path", a.path), zap.Error(err))
	} else {
		zap.L().Debug("成功清理临时程序文件", zap.String("path", a.path))
	}
	a.path = ""
}

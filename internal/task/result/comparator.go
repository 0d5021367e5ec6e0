package result

import (
	"strings"

	"github.com/s-dudhiya/EduNexus/internal/constants"
)

// Comparator 比较程序输出和期望输出
type Comparator struct {
	mode string
}

// NewComparator 按比对模式创建比较器，未知模式按 trim 处理
func NewComparator(mode string) *Comparator {
	if mode != constants.CompareModeFields {
		mode = constants.CompareModeTrim
	}
	return &Comparator{
		mode: mode,
	}
}

// Mode 当前比对模式
func (c *Comparator) Mode() string {
	return c.mode
}

// Compare 比较程序输出和标准输出
func (c *Comparator) Compare(programOutput, expectedOutput string) bool {
	if c.mode == constants.CompareModeTrim {
		// 只忽略首尾空白，内部空白和大小写均需一致
		return strings.TrimSpace(programOutput) == strings.TrimSpace(expectedOutput)
	}
	// 模糊比较（忽略多余空格和换行）
	progOut := strings.Fields(normalizeString(programOutput))
	expOut := strings.Fields(normalizeString(expectedOutput))
	if len(progOut) != len(expOut) {
		return false
	}
	for i := range progOut {
		if progOut[i] != expOut[i] {
			return false
		}
	}
	return true
}

// normalizeString 清理字符串
func normalizeString(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}

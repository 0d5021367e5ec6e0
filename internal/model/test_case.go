package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var ErrTestCaseSetNotArray = errors.New("test case payload is not a JSON array")

// TestCase 单个测试用例，Input 为空表示不提供标准输入，Output 为空按空串比较
type TestCase struct {
	Input  *string `json:"input"`
	Output *string `json:"output"`
}

// Stdin 返回测试用例的标准输入，未提供时为 nil
func (tc TestCase) Stdin() *string {
	return tc.Input
}

// Expected 返回期望输出，缺省为空串
func (tc TestCase) Expected() string {
	if tc.Output == nil {
		return ""
	}
	return *tc.Output
}

// DecodeTestCase 解析单个测试用例，元素必须是 JSON 对象，input/output 只能是字符串或 null
func DecodeTestCase(raw json.RawMessage) (TestCase, error) {
	var tc TestCase
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return tc, fmt.Errorf("test case must be an object, got %s", describeJSON(trimmed))
	}
	if err := json.Unmarshal(trimmed, &tc); err != nil {
		return tc, fmt.Errorf("test case has invalid fields: %w", err)
	}
	return tc, nil
}

// TestCaseSet 试卷上的测试用例原始载荷，由存储层持有，评测时才解析
type TestCaseSet json.RawMessage

// Elements 校验载荷为数组并拆分出各元素，元素本身延迟到评测时解析
func (s TestCaseSet) Elements() ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(s)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: got %s", ErrTestCaseSetNotArray, describeJSON(trimmed))
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTestCaseSetNotArray, err)
	}
	return elements, nil
}

// IsEmpty 载荷是否未填写
func (s TestCaseSet) IsEmpty() bool {
	trimmed := bytes.TrimSpace(s)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func (s TestCaseSet) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return s, nil
}

func (s *TestCaseSet) UnmarshalJSON(data []byte) error {
	*s = append((*s)[0:0], data...)
	return nil
}

func (s TestCaseSet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return string(s), nil
}

func (s *TestCaseSet) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = nil
	case []byte:
		*s = append((*s)[0:0], v...)
	case string:
		*s = TestCaseSet(v)
	default:
		return fmt.Errorf("type assertion to []byte failed while scanning TestCaseSet: %T", value)
	}
	return nil
}

func (s TestCaseSet) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql", "sqlite":
		return "JSON"
	case "postgres":
		return "JSONB"
	}
	return ""
}

// describeJSON 描述 JSON 值的类型，用于错误信息
func describeJSON(raw []byte) string {
	if len(raw) == 0 {
		return "empty payload"
	}
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

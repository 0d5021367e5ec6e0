package evaluator

import (
	"encoding/json"

	"github.com/s-dudhiya/EduNexus/internal/model"
)

// caseStream 测试用例的惰性拉取序列：只在 Next 时解析元素，Stop 之后不再产出，不可重置
type caseStream struct {
	elements []json.RawMessage
	next     int
	stopped  bool
}

// caseItem 拉取到的单个测试用例；Err 非空表示该下标的元素格式错误
type caseItem struct {
	Index int
	Case  model.TestCase
	Err   error
}

func newCaseStream(set model.TestCaseSet) (*caseStream, error) {
	elements, err := set.Elements()
	if err != nil {
		return nil, err
	}
	return &caseStream{elements: elements}, nil
}

// Next 拉取下一个测试用例，序列耗尽或已停止时 ok 为 false
func (s *caseStream) Next() (item caseItem, ok bool) {
	if s.stopped || s.next >= len(s.elements) {
		s.stopped = true
		return caseItem{}, false
	}
	index := s.next
	s.next++

	tc, err := model.DecodeTestCase(s.elements[index])
	return caseItem{Index: index, Case: tc, Err: err}, true
}

// Stop 放弃剩余的测试用例
func (s *caseStream) Stop() {
	s.stopped = true
	s.elements = nil
}

// Len 测试用例总数
func (s *caseStream) Len() int {
	return len(s.elements)
}

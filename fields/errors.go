package fields

import (
	"errors"
	"fmt"
)

// ErrorKind 字段访问错误类型
type ErrorKind int

const (
	// MissingField 对象上不存在该字段
	MissingField ErrorKind = iota + 1
	// InvalidType 字段存在，但类型与期望不一致
	InvalidType
)

func (k ErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing field"
	case InvalidType:
		return "invalid type"
	default:
		return "unknown"
	}
}

var (
	ErrMissingField = &FieldAccessError{Kind: MissingField}
	ErrInvalidType  = &FieldAccessError{Kind: InvalidType}
)

// FieldAccessError 通过 preflect 访问字段时出现的错误
type FieldAccessError struct {
	Kind  ErrorKind
	Field string // 查找时使用的字段名
	Want  string // 期望类型（仅 InvalidType）
	Got   string // 实际类型（仅 InvalidType）
}

func (e *FieldAccessError) Error() string {
	switch e.Kind {
	case MissingField:
		if e.Field == "" {
			return "the specified field did not exist for the object"
		}
		return fmt.Sprintf("field %q did not exist for the object", e.Field)
	case InvalidType:
		if e.Field == "" {
			return "the specified field is of a different type"
		}
		return fmt.Sprintf("field %q is of type %s, not %s", e.Field, e.Got, e.Want)
	default:
		return "field access error"
	}
}

// Is 按 Kind 匹配，使 errors.Is(err, ErrMissingField) 对任意字段成立
func (e *FieldAccessError) Is(target error) bool {
	var t *FieldAccessError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NewMissingField 返回字段不存在错误，供生成代码使用
func NewMissingField(name string) error {
	return &FieldAccessError{Kind: MissingField, Field: name}
}

// NewInvalidType 返回类型不匹配错误
func NewInvalidType(name, want, got string) error {
	return &FieldAccessError{Kind: InvalidType, Field: name, Want: want, Got: got}
}

package preflectattr

import (
	"errors"
	"fmt"
	"go/token"
)

// ErrorKind helper 属性错误类型
type ErrorKind int

const (
	// MultipleAttributes 同一字段上出现多个属性
	MultipleAttributes ErrorKind = iota + 1
	// MissingGroup @Preflect 后面不是括号
	MissingGroup
	// ExtraTokens 右括号后紧跟多余内容
	ExtraTokens
	// Malformed 属性内容无法解析
	Malformed
)

func (k ErrorKind) String() string {
	switch k {
	case MultipleAttributes:
		return "每个字段只能使用一个 preflect 属性"
	case MissingGroup:
		return "属性内容必须用括号包裹（例如 @Preflect(ignore)）"
	case ExtraTokens:
		return "发现多余的内容"
	case Malformed:
		return "解析属性内容失败"
	default:
		return "未知错误"
	}
}

var (
	ErrMultipleAttributes = &Error{Kind: MultipleAttributes}
	ErrMissingGroup       = &Error{Kind: MissingGroup}
	ErrExtraTokens        = &Error{Kind: ExtraTokens}
	ErrParse              = &Error{Kind: Malformed}
)

// Error helper 属性错误，携带字段名和源码位置
type Error struct {
	Kind     ErrorKind
	Field    string
	Position token.Position
	Detail   string
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Field != "" {
		msg = fmt.Sprintf("字段 %s: %s", e.Field, msg)
	}
	if e.Position.IsValid() {
		msg = e.Position.String() + ": " + msg
	}
	return msg
}

// Is 按 Kind 匹配
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, field string, pos token.Position, format string, args ...any) *Error {
	e := &Error{Kind: kind, Field: field, Position: pos}
	if format != "" {
		e.Detail = fmt.Sprintf(format, args...)
	}
	return e
}

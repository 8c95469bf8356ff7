package fields

import "unsafe"

// Field 描述结构体 S 中类型为 T 的一个字段
// 由 @HasField 注解为每个字段生成，字段地址通过偏移量计算
type Field[S any, T any] struct {
	name   string
	offset uintptr
}

// NewField 创建字段描述符，offset 必须来自 unsafe.Offsetof(S{}.F)
func NewField[S any, T any](name string, offset uintptr) Field[S, T] {
	return Field[S, T]{name: name, offset: offset}
}

// Name 字段查找名
func (f Field[S, T]) Name() string {
	return f.name
}

// Offset 字段相对结构体起始地址的字节偏移
func (f Field[S, T]) Offset() uintptr {
	return f.offset
}

// Ptr 返回 s 中该字段的指针
func (f Field[S, T]) Ptr(s *S) *T {
	return (*T)(unsafe.Add(unsafe.Pointer(s), f.offset))
}

// Get 返回字段值的副本
func (f Field[S, T]) Get(s *S) T {
	return *f.Ptr(s)
}

// Set 写入字段值
func (f Field[S, T]) Set(s *S, v T) {
	*f.Ptr(s) = v
}

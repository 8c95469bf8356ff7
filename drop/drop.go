// Package drop 支持释放结构体的部分字段，配合 @PartialDrop 注解使用。
package drop

import (
	"io"
	"reflect"
)

// PartialDrop 可以释放除指定字段外所有字段的结构体
//
// 调用方需要保证：被保留的字段之后也会被释放，已释放的字段不会再次使用或释放。
type PartialDrop interface {
	DropAllFieldsExcept(fieldNames ...string) error
}

// Dropper 释放时需要执行清理逻辑的类型
type Dropper interface {
	Drop()
}

var (
	dropperType = reflect.TypeFor[Dropper]()
	closerType  = reflect.TypeFor[io.Closer]()
)

// Field 释放单个字段：先执行 Drop/Close，再写入零值
func Field[T any](p *T) error {
	var err error
	switch v := any(p).(type) {
	case Dropper:
		v.Drop()
	case io.Closer:
		err = v.Close()
	default:
		switch v := any(*p).(type) {
		case Dropper:
			if !isNil(v) {
				v.Drop()
			}
		case io.Closer:
			if !isNil(v) {
				err = v.Close()
			}
		}
	}

	var zero T
	*p = zero
	return err
}

// NeedsDrop 释放 T 时是否会执行零值写入以外的逻辑
func NeedsDrop[T any]() bool {
	t := reflect.TypeFor[T]()
	ptr := reflect.PointerTo(t)
	return t.Implements(dropperType) || ptr.Implements(dropperType) ||
		t.Implements(closerType) || ptr.Implements(closerType)
}

// isNil 字段可能是 nil 指针或 nil 接口，此时跳过清理
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

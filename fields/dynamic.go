package fields

import (
	"fmt"
	"reflect"
)

// HasFields 可在运行时按名称访问字段的结构体
// 由 @HasFields 注解生成实现
type HasFields interface {
	// GetFieldRaw 按名称返回字段的值
	GetFieldRaw(name string) (any, error)

	// GetFieldMutRaw 按名称返回指向字段的指针（*T）
	GetFieldMutRaw(name string) (any, error)
}

// FieldLister 可以列出所有可访问字段名的结构体
type FieldLister interface {
	FieldNames() []string
}

// GetField 按名称读取字段并转换为 T
// 字段的类型必须恰好是 T；T 为接口类型时不接受实现了 T 的其他类型
func GetField[T any](obj HasFields, name string) (T, error) {
	var zero T

	// 对接口类型做断言只检查是否实现，需要通过字段指针比较静态类型
	if reflect.TypeFor[T]().Kind() == reflect.Interface {
		raw, err := obj.GetFieldMutRaw(name)
		if err != nil {
			return zero, err
		}
		p, ok := raw.(*T)
		if !ok {
			return zero, NewInvalidType(name, typeName[T](), elemTypeName(raw))
		}
		return *p, nil
	}

	raw, err := obj.GetFieldRaw(name)
	if err != nil {
		return zero, err
	}
	v, ok := raw.(T)
	if !ok {
		return zero, NewInvalidType(name, typeName[T](), dynamicTypeName(raw))
	}
	return v, nil
}

// GetFieldMut 按名称获取字段指针并转换为 *T
// 通过返回的指针修改会直接反映到结构体上
func GetFieldMut[T any](obj HasFields, name string) (*T, error) {
	raw, err := obj.GetFieldMutRaw(name)
	if err != nil {
		return nil, err
	}

	p, ok := raw.(*T)
	if !ok {
		return nil, NewInvalidType(name, "*"+typeName[T](), dynamicTypeName(raw))
	}
	return p, nil
}

// SetField 按名称写入字段
func SetField[T any](obj HasFields, name string, value T) error {
	p, err := GetFieldMut[T](obj, name)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// Names 返回对象可访问的字段名，对象未实现 FieldLister 时返回 nil
func Names(obj any) []string {
	if l, ok := obj.(FieldLister); ok {
		return l.FieldNames()
	}
	return nil
}

func typeName[T any]() string {
	return fmt.Sprintf("%T", (*T)(nil))[1:]
}

func dynamicTypeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

// elemTypeName 字段指针所指向的类型
func elemTypeName(p any) string {
	t := reflect.TypeOf(p)
	if t == nil || t.Kind() != reflect.Pointer {
		return dynamicTypeName(p)
	}
	return t.Elem().String()
}

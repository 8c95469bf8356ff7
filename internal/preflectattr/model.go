package preflectattr

import (
	"errors"
	"fmt"
	"slices"
	"unicode"

	"github.com/donutnomad/preflect/internal/structparse"
)

// ErrNameConflict 生成的方法与结构体已有的方法或字段同名
var ErrNameConflict = errors.New("名称冲突")

// 生成代码中已使用的标识符，不能作为接收器名
var reservedReceivers = []string{"name", "fieldNames", "keep", "errs", "fields", "drop", "errors", "unsafe", "_"}

// Model 待生成的结构体：结构信息、解析好属性的字段以及命名方式
type Model struct {
	Info   *structparse.StructInfo
	Fields []Field
	Naming Naming
}

// Load 解析结构体及其字段属性
// 字段属性有误时仍返回 Model，错误字段不在 Fields 中
func Load(ctx *structparse.ParseContext, file, name string, naming Naming) (*Model, []error) {
	info, err := ctx.ParseStruct(file, name)
	if err != nil {
		return nil, []error{err}
	}
	fields, errs := ParseFields(info)
	return &Model{Info: info, Fields: fields, Naming: naming}, errs
}

// Keys 字段的查找名
func (m *Model) Keys(f Field) []string {
	return f.Keys(m.Naming)
}

// PrimaryKeys 按声明顺序返回字段的主查找名
func (m *Model) PrimaryKeys(fields []Field) []string {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, m.Keys(f)[0])
	}
	return keys
}

// CheckKeys 检查 fields 之间的查找名冲突
func (m *Model) CheckKeys(fields []Field) []error {
	return CheckKeys(fields, m.Naming)
}

// CheckNames 检查即将生成的方法名是否与结构体已有的方法或字段冲突
func (m *Model) CheckNames(methods ...string) []error {
	var errs []error
	for _, name := range methods {
		for _, existing := range m.Info.Methods {
			if existing.Name == name {
				errs = append(errs, fmt.Errorf("%s: %s: %w: 方法 %s 已在 %s 定义", m.Info.Position, m.Info.Name, ErrNameConflict, name, existing.Position))
			}
		}
		if f, ok := m.Info.FieldByName(name); ok {
			errs = append(errs, fmt.Errorf("%s: %s: %w: 字段 %s 与生成的方法同名", f.Position, m.Info.Name, ErrNameConflict, name))
		}
	}
	return errs
}

// CheckPackageNames 检查生成代码引入的包级标识符和导入名是否已在包内声明
func (m *Model) CheckPackageNames(ctx *structparse.ParseContext, names ...string) []error {
	var errs []error
	for _, name := range names {
		if pos, ok := ctx.FindPackageDecl(m.Info.FilePath, name); ok {
			errs = append(errs, fmt.Errorf("%s: %s: %w: 包级标识符 %s 已在 %s 声明，与生成代码冲突", m.Info.Position, m.Info.Name, ErrNameConflict, name, pos))
		}
	}
	return errs
}

// Receiver 生成方法的接收器类型，如 *Pair[K, V]
func (m *Model) Receiver() string {
	return "*" + m.Info.TypeName()
}

// ReceiverName 生成方法的接收器名
// 沿用结构体已有方法的接收器名，否则取类型名首字母小写
func (m *Model) ReceiverName() string {
	for _, method := range m.Info.Methods {
		if method.ReceiverName != "" && !slices.Contains(reservedReceivers, method.ReceiverName) {
			return method.ReceiverName
		}
	}
	r := []rune(m.Info.Name)
	name := string(unicode.ToLower(r[0]))
	if slices.Contains(reservedReceivers, name) || !unicode.IsLetter(r[0]) {
		return "s"
	}
	return name
}

package preflectattr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/donutnomad/preflect/internal/structparse"
	"github.com/donutnomad/preflect/internal/utils"
	"github.com/samber/lo"
)

// Naming 由 Go 字段名推导查找名的方式
type Naming string

const (
	NamingGo    Naming = "go"    // 原样使用字段名: UserID
	NamingSnake Naming = "snake" // user_id
	NamingCamel Naming = "camel" // userID
)

// ErrDuplicateKey 不同字段使用了相同的查找名
var ErrDuplicateKey = errors.New("查找名重复")

// ParseNaming 解析 naming 参数，空字符串为 NamingGo
func ParseNaming(s string) (Naming, error) {
	switch n := Naming(strings.ToLower(strings.TrimSpace(s))); n {
	case "", NamingGo:
		return NamingGo, nil
	case NamingSnake, NamingCamel:
		return n, nil
	}
	return "", fmt.Errorf("naming=%q 无效，可选值: go, snake, camel", s)
}

// Apply 推导字段的主查找名
func (n Naming) Apply(name string) string {
	switch n {
	case NamingSnake:
		return utils.ToSnakeCase(name)
	case NamingCamel:
		return utils.LowerCamelCase(name)
	default:
		return name
	}
}

// Field 带 helper 属性的字段
type Field struct {
	structparse.FieldInfo
	Attr HelperAttr
}

// Keys 字段的查找名：主查找名在前，其后是 alias
func (f Field) Keys(n Naming) []string {
	return lo.Uniq(append([]string{n.Apply(f.Name)}, f.Attr.Aliases()...))
}

// ParseFields 解析结构体所有字段的 helper 属性
// 空白字段不参与任何生成，直接跳过；出错的字段不返回
func ParseFields(info *structparse.StructInfo) ([]Field, []error) {
	var (
		fields []Field
		errs   []error
	)
	for _, f := range info.Fields {
		if f.IsBlank() {
			continue
		}
		attr, err := Parse(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fields = append(fields, Field{FieldInfo: f, Attr: attr})
	}
	return fields, errs
}

// Accessible 过滤掉被 ignore 的字段
func Accessible(fields []Field) []Field {
	return lo.Filter(fields, func(f Field, _ int) bool {
		return !f.Attr.Ignored()
	})
}

// CheckKeys 检查不同字段之间的查找名冲突
func CheckKeys(fields []Field, n Naming) []error {
	var errs []error
	owner := make(map[string]string)
	for _, f := range fields {
		for _, key := range f.Keys(n) {
			if other, ok := owner[key]; ok {
				errs = append(errs, fmt.Errorf("%s: 字段 %s: %w: %q 已被字段 %s 使用", f.Position, f.Name, ErrDuplicateKey, key, other))
				continue
			}
			owner[key] = f.Name
		}
	}
	return errs
}

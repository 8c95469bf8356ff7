package hasfieldgen

import (
	"fmt"
	"path"
	"strings"

	"github.com/donutnomad/gg"
)

const fieldsPkgPath = "github.com/donutnomad/preflect/fields"

// generateDefinition 为同一输出文件中的结构体生成 gg 定义
func generateDefinition(targets []*target) *gg.Generator {
	gen := gg.New()
	gen.SetPackage(targets[0].model.Info.PackageName)
	for _, t := range targets {
		if len(t.entries) > 0 {
			gen.P(fieldsPkgPath)
			gen.P("unsafe")
		}
		for _, e := range t.entries {
			for _, imp := range e.field.Imports {
				// 包名与路径最后一段不同时使用别名，保证字段类型中的包名可用
				if name := importName(imp); name != path.Base(imp.ImportPath) {
					gen.PAlias(imp.ImportPath, name)
				} else {
					gen.P(imp.ImportPath)
				}
			}
		}
	}

	for i, t := range targets {
		if i > 0 {
			gen.Body().AddLine()
		}
		generateDescriptors(gen.Body(), t)
		generateAccessors(gen.Body(), t)
	}
	return gen
}

// generateDescriptors 生成字段描述符变量
//
//	var UserFields = struct {
//		ID fields.Field[User, int64]
//	}{
//		ID: fields.NewField[User, int64]("ID", unsafe.Offsetof(User{}.ID)),
//	}
func generateDescriptors(group *gg.Group, t *target) {
	name := t.model.Info.Name

	var decls, values []string
	for _, e := range t.entries {
		typ := fmt.Sprintf("fields.Field[%s, %s]", name, e.field.Type)
		decls = append(decls, fmt.Sprintf("\t%s %s", e.ident, typ))
		values = append(values, fmt.Sprintf("\t%s: fields.NewField[%s, %s](%q, unsafe.Offsetof(%s{}.%s)),",
			e.ident, name, e.field.Type, e.key, name, e.field.Name))
	}

	group.Append(gg.LineComment("%sFields %s 的字段描述符", name, name))
	if len(t.entries) == 0 {
		group.Append(gg.S("var %sFields = struct{}{}", name))
		group.AddLine()
		return
	}
	group.Append(gg.S("var %sFields = struct {\n%s\n}{\n%s\n}",
		name,
		strings.Join(decls, "\n"),
		strings.Join(values, "\n"),
	))
	group.AddLine()
}

// generateAccessors 为每个描述符生成 Field<Name>() 方法
func generateAccessors(group *gg.Group, t *target) {
	m := t.model
	recv := m.ReceiverName()
	for i, e := range t.entries {
		if i > 0 {
			group.AddLine()
		}
		group.Append(gg.LineComment("%s 返回字段 %s 的指针", accessorName(e), e.field.Name))
		group.NewFunction(accessorName(e)).
			WithReceiver(recv, m.Receiver()).
			AddResult("", "*"+e.field.Type).
			AddBody(gg.Return(gg.S("%sFields.%s.Ptr(%s)", m.Info.Name, e.ident, recv)))
	}
}

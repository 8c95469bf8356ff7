package hasfieldsgen

import (
	"fmt"
	"strings"

	"github.com/donutnomad/gg"
	"github.com/donutnomad/preflect/internal/preflectattr"
	"github.com/samber/lo"
)

const fieldsPkgPath = "github.com/donutnomad/preflect/fields"

var generatedMethods = []string{"GetFieldRaw", "GetFieldMutRaw", "FieldNames"}

// generateDefinition 为同一输出文件中的结构体生成 gg 定义
func generateDefinition(models []*preflectattr.Model) *gg.Generator {
	gen := gg.New()
	gen.SetPackage(models[0].Info.PackageName)
	fieldsPkg := gen.P(fieldsPkgPath)

	for i, m := range models {
		if i > 0 {
			gen.Body().AddLine()
		}
		generateMethods(gen.Body(), fieldsPkg, m)
	}
	return gen
}

// generateMethods 生成 GetFieldRaw、GetFieldMutRaw 和 FieldNames
//
//	func (u *User) GetFieldRaw(name string) (any, error) {
//		switch name {
//		case "ID", "uid":
//			return u.ID, nil
//		}
//		return nil, fields.NewMissingField(name)
//	}
func generateMethods(group *gg.Group, fieldsPkg *gg.PackageRef, m *preflectattr.Model) {
	recv := m.ReceiverName()
	accessible := preflectattr.Accessible(m.Fields)

	if !m.Info.IsGeneric() {
		group.Append(gg.NewInlineGroup().Append(
			gg.S("var _ "), fieldsPkg.Type("HasFields"), gg.S(" = (%s)(nil)", m.Receiver()),
		))
		group.AddLine()
	}

	lookup := func(fnName, doc, prefix string) {
		sw := gg.Switch("name")
		for _, f := range accessible {
			sw.NewCase(gg.S("%s", caseList(m.Keys(f)))).
				AddBody(gg.S("return %s%s.%s, nil", prefix, recv, f.Name))
		}

		var body []any
		if len(accessible) > 0 {
			body = append(body, sw)
		}
		body = append(body, gg.NewInlineGroup().Append(
			gg.S("return nil, "), fieldsPkg.Call("NewMissingField", "name"),
		))

		group.Append(gg.LineComment("%s %s", fnName, doc))
		group.NewFunction(fnName).
			WithReceiver(recv, m.Receiver()).
			AddParameter("name", "string").
			AddResult("", "any").
			AddResult("", "error").
			AddBody(body...)
		group.AddLine()
	}
	lookup("GetFieldRaw", "按名称返回字段的值", "")
	lookup("GetFieldMutRaw", "按名称返回字段的指针", "&")

	names := "nil"
	if len(accessible) > 0 {
		names = fmt.Sprintf("[]string{%s}", caseList(m.PrimaryKeys(accessible)))
	}
	group.Append(gg.LineComment("FieldNames 返回可访问字段的查找名"))
	group.NewFunction("FieldNames").
		WithReceiver(recv, m.Receiver()).
		AddResult("", "[]string").
		AddBody(gg.Return(gg.S("%s", names)))
}

// caseList "ID", "uid"
func caseList(keys []string) string {
	return strings.Join(lo.Map(keys, func(k string, _ int) string {
		return fmt.Sprintf("%q", k)
	}), ", ")
}

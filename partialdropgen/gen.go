package partialdropgen

import (
	"bytes"

	"github.com/dave/jennifer/jen"
	"github.com/donutnomad/preflect/internal/preflectattr"
	"github.com/samber/lo"
)

const dropPkgPath = "github.com/donutnomad/preflect/drop"

// renderFile 渲染同一输出文件中所有结构体的 DropAllFieldsExcept 方法
func renderFile(models []*preflectattr.Model) ([]byte, error) {
	f := jen.NewFile(models[0].Info.PackageName)
	f.ImportName(dropPkgPath, "drop")

	for _, m := range models {
		generateDropMethod(f, m)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// generateDropMethod
//
//	func (u *User) DropAllFieldsExcept(fieldNames ...string) error {
//		keep := make(map[string]bool, len(fieldNames))
//		for _, name := range fieldNames {
//			keep[name] = true
//		}
//
//		var errs []error
//		if !keep["Conn"] && !keep["conn"] {
//			errs = append(errs, drop.Field(&u.Conn))
//		}
//		return errors.Join(errs...)
//	}
func generateDropMethod(f *jen.File, m *preflectattr.Model) {
	recv := m.ReceiverName()

	if !m.Info.IsGeneric() {
		f.Var().Id("_").Qual(dropPkgPath, "PartialDrop").Op("=").
			Parens(jen.Op("*").Id(m.Info.Name)).Call(jen.Nil())
		f.Line()
	}

	var body []jen.Code
	if len(m.Fields) == 0 {
		body = append(body, jen.Return(jen.Nil()))
	} else {
		body = append(body,
			jen.Id("keep").Op(":=").Make(jen.Map(jen.String()).Bool(), jen.Len(jen.Id("fieldNames"))),
			jen.For(jen.List(jen.Id("_"), jen.Id("name")).Op(":=").Range().Id("fieldNames")).Block(
				jen.Id("keep").Index(jen.Id("name")).Op("=").True(),
			),
			jen.Line(),
			jen.Var().Id("errs").Index().Error(),
		)
		for _, field := range m.Fields {
			body = append(body, jen.If(notKept(m.Keys(field))).Block(
				jen.Id("errs").Op("=").Append(
					jen.Id("errs"),
					jen.Qual(dropPkgPath, "Field").Call(jen.Op("&").Id(recv).Dot(field.Name)),
				),
			))
		}
		body = append(body, jen.Return(jen.Qual("errors", "Join").Call(jen.Id("errs").Op("..."))))
	}

	f.Comment(methodName + " 释放除 fieldNames 以外的所有字段")
	f.Comment("调用方需要自行释放保留的字段，且不能再使用已释放的字段")
	f.Func().Params(jen.Id(recv).Add(receiverType(m))).Id(methodName).
		Params(jen.Id("fieldNames").Op("...").String()).Error().
		Block(body...)
	f.Line()
}

// notKept !keep["a"] && !keep["b"]
func notKept(keys []string) *jen.Statement {
	cond := jen.Op("!").Id("keep").Index(jen.Lit(keys[0]))
	for _, key := range keys[1:] {
		cond = cond.Op("&&").Op("!").Id("keep").Index(jen.Lit(key))
	}
	return cond
}

// receiverType *User 或 *Pair[K, V]
func receiverType(m *preflectattr.Model) *jen.Statement {
	typ := jen.Id(m.Info.Name)
	if m.Info.IsGeneric() {
		typ = typ.Types(lo.Map(m.Info.TypeParams, func(p string, _ int) jen.Code {
			return jen.Id(p)
		})...)
	}
	return jen.Op("*").Add(typ)
}

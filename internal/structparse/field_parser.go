package structparse

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"go/types"
	"strconv"
)

// parseStructFields 解析结构体字段
// 一行声明多个名称的字段（A, B int）拆分为多个 FieldInfo
func parseStructFields(fset *token.FileSet, fieldList []*ast.Field, imports []ImportInfo) []FieldInfo {
	var fields []FieldInfo

	for _, field := range fieldList {
		base := FieldInfo{
			Type:    typeString(fset, field.Type),
			Imports: typeImports(field.Type, imports),
			Doc:     commentLines(fset, field.Doc),
			Comment: commentLines(fset, field.Comment),
		}

		// 获取字段标签
		if field.Tag != nil {
			if tag, err := strconv.Unquote(field.Tag.Value); err == nil {
				base.Tag = tag
			} else {
				base.Tag = field.Tag.Value
			}
			base.TagPosition = fset.Position(field.Tag.Pos())
		}

		if len(field.Names) == 0 {
			// 匿名字段 (嵌入字段)，字段名为类型名
			f := base
			f.Name = embeddedFieldName(field.Type)
			f.Embedded = true
			f.Position = fset.Position(field.Type.Pos())
			fields = append(fields, f)
			continue
		}

		for _, name := range field.Names {
			f := base
			f.Name = name.Name
			f.Position = fset.Position(name.Pos())
			fields = append(fields, f)
		}
	}

	return fields
}

// typeString 按源码写法输出类型表达式
// types.ExprString 会丢掉匿名结构体字段的标签，而标签是类型的一部分
func typeString(fset *token.FileSet, expr ast.Expr) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, expr); err != nil {
		return types.ExprString(expr)
	}
	return buf.String()
}

// embeddedFieldName 嵌入字段的名称：去掉指针、包名和类型参数后的类型名
// *pkg.Base[T] -> Base
func embeddedFieldName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.SelectorExpr:
			return e.Sel.Name
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return types.ExprString(expr)
		}
	}
}

// commentLines 将注释组拆分为带位置的单行注释
func commentLines(fset *token.FileSet, group *ast.CommentGroup) []CommentLine {
	if group == nil {
		return nil
	}
	lines := make([]CommentLine, 0, len(group.List))
	for _, c := range group.List {
		lines = append(lines, CommentLine{
			Text:     c.Text,
			Position: fset.Position(c.Slash),
		})
	}
	return lines
}

package plugin

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/donutnomad/gg"
)

// ParseSourceToGG 将 Go 源代码解析并转换为 gg.Generator
// 这使得不使用 gg 库的生成器（例如基于 jennifer 的生成器）也能与 gg 框架集成
// imports 会被提取出来与其他生成器的输出合并，代码体按原样保留（包括注释）
func ParseSourceToGG(source []byte) (*gg.Generator, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", source, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析源代码失败: %w", err)
	}

	gen := gg.New()

	// 设置包名
	gen.SetPackage(file.Name.Name)

	// 代码体从 package 子句或最后一个 import 声明之后开始
	bodyStart := file.Name.End()

	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return nil, fmt.Errorf("无效的 import 路径 %s: %w", imp.Path.Value, err)
		}
		switch {
		case imp.Name == nil || imp.Name.Name == "":
			gen.P(importPath)
		case imp.Name.Name == "." || imp.Name.Name == "_":
			// dot import 和匿名 import 暂不支持，跳过
			continue
		default:
			gen.PAlias(importPath, imp.Name.Name)
		}
	}
	for _, decl := range file.Decls {
		if d, ok := decl.(*ast.GenDecl); ok && d.Tok == token.IMPORT {
			bodyStart = max(bodyStart, d.End())
		}
	}

	offset := fset.Position(bodyStart).Offset
	body := strings.TrimSpace(string(source[offset:]))
	if body != "" {
		gen.Body().Append(gg.String("%s", body))
	}

	return gen, nil
}

// ParseSourceToGGWithHeader 与 ParseSourceToGG 相同，但可以设置文件头注释
func ParseSourceToGGWithHeader(source []byte, headerFormat string, args ...any) (*gg.Generator, error) {
	gen, err := ParseSourceToGG(source)
	if err != nil {
		return nil, err
	}

	if headerFormat != "" {
		gen.SetHeader(headerFormat, args...)
	}

	return gen, nil
}

// MustParseSourceToGG 是 ParseSourceToGG 的 panic 版本
func MustParseSourceToGG(source []byte) *gg.Generator {
	gen, err := ParseSourceToGG(source)
	if err != nil {
		panic(err)
	}
	return gen
}

package structparse

import (
	"go/ast"
	"regexp"
	"strconv"
	"strings"
)

// extractImports 提取文件中的导入信息
// 未写别名的导入根据路径推断包名
func extractImports(node *ast.File) []ImportInfo {
	var imports []ImportInfo
	for _, imp := range node.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}

		info := ImportInfo{ImportPath: importPath}
		if imp.Name != nil {
			// 有显式别名
			info.Alias = imp.Name.Name
			info.PackageName = imp.Name.Name
		} else {
			info.PackageName = GuessPackageName(importPath)
		}
		imports = append(imports, info)
	}
	return imports
}

// majorVersionRegex 匹配 v2、v3 这样的主版本号路径元素
var majorVersionRegex = regexp.MustCompile(`^v[0-9]+$`)

// GuessPackageName 根据导入路径推断包名
// 遵循常见约定，不读取依赖源码：
//
//	github.com/samber/lo            -> lo
//	github.com/Masterminds/sprig/v3 -> sprig
//	gopkg.in/yaml.v3                -> yaml
//	github.com/mattn/go-runewidth   -> runewidth
func GuessPackageName(importPath string) string {
	parts := strings.Split(importPath, "/")
	name := parts[len(parts)-1]
	if majorVersionRegex.MatchString(name) && len(parts) > 1 {
		name = parts[len(parts)-2]
	}
	// gopkg.in/yaml.v3
	if idx := strings.Index(name, ".v"); idx > 0 {
		name = name[:idx]
	}
	name = strings.TrimPrefix(name, "go-")
	name = strings.TrimSuffix(name, "-go")
	name = strings.TrimSuffix(name, ".go")
	name = strings.NewReplacer("-", "", ".", "").Replace(name)
	return strings.ToLower(name)
}

// typeImports 收集类型表达式引用的包
func typeImports(expr ast.Expr, imports []ImportInfo) []ImportInfo {
	var result []ImportInfo
	seen := make(map[string]bool)
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		for _, imp := range imports {
			if imp.PackageName == ident.Name && !seen[imp.ImportPath] {
				seen[imp.ImportPath] = true
				result = append(result, imp)
				break
			}
		}
		return false
	})
	return result
}

package structparse

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strings"
)

// parseMethodsFromPackage 从包中的所有文件解析指定结构体的方法
// 跳过测试文件和 preflect 生成的文件，避免把上次生成的方法当作冲突
func (c *ParseContext) parseMethodsFromPackage(targetFile, structName string) ([]MethodInfo, error) {
	var allMethods []MethodInfo

	files, err := FindGoFiles(filepath.Dir(targetFile))
	if err != nil {
		return nil, fmt.Errorf("查找包文件失败: %w", err)
	}

	for _, file := range files {
		// 首先用字符串匹配检查文件是否可能包含该结构体的方法
		if !fileMayContainStructMethods(file, structName) {
			continue
		}

		methods, err := c.parseMethodsFromFile(file, structName)
		if err != nil {
			// 记录错误但继续处理其他文件
			continue
		}
		allMethods = append(allMethods, methods...)
	}

	return allMethods, nil
}

// FindGoFiles 查找目录中的所有Go文件（不递归，不包含测试文件）
func FindGoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// fileMayContainStructMethods 检查文件是否可能包含指定结构体的方法
func fileMayContainStructMethods(filename, structName string) bool {
	content, err := os.ReadFile(filename)
	if err != nil {
		return false
	}

	// 接收器形如 (u *User)、(u User)、(u *User[T])
	return bytes.Contains(content, []byte(structName+")")) ||
		bytes.Contains(content, []byte(structName+"["))
}

// isPreflectGenerated 是否为 preflect 生成的文件
func isPreflectGenerated(file *ast.File) bool {
	if !ast.IsGenerated(file) {
		return false
	}
	for _, cg := range file.Comments {
		if cg.Pos() > file.Package {
			break
		}
		if strings.Contains(cg.Text(), "by preflect") {
			return true
		}
	}
	return false
}

// parseMethodsFromFile 从单个文件解析指定结构体的方法
func (c *ParseContext) parseMethodsFromFile(filename, structName string) ([]MethodInfo, error) {
	fset, node, err := c.parseFile(filename)
	if err != nil {
		return nil, err
	}
	if isPreflectGenerated(node) {
		return nil, nil
	}

	// 获取文件的绝对路径
	absPath, err := filepath.Abs(filename)
	if err != nil {
		absPath = filename
	}

	var methods []MethodInfo
	for _, decl := range node.Decls {
		funcDecl, ok := decl.(*ast.FuncDecl)
		if !ok || funcDecl.Recv == nil || len(funcDecl.Recv.List) == 0 {
			continue
		}
		recv := funcDecl.Recv.List[0]

		recvType, pointer := receiverBaseName(recv.Type)
		if recvType != structName {
			continue
		}

		method := MethodInfo{
			Name:         funcDecl.Name.Name,
			ReceiverType: types.ExprString(recv.Type),
			FilePath:     absPath,
			Position:     fset.Position(funcDecl.Name.Pos()),
		}
		if len(recv.Names) > 0 {
			method.ReceiverName = recv.Names[0].Name
		}
		if !pointer {
			method.ReceiverType = strings.TrimPrefix(method.ReceiverType, "*")
		}

		// 解析返回类型
		if results := funcDecl.Type.Results; results != nil && len(results.List) > 0 {
			var returnTypes []string
			for _, result := range results.List {
				returnTypes = append(returnTypes, types.ExprString(result.Type))
			}
			method.ReturnType = strings.Join(returnTypes, ", ")
		}

		methods = append(methods, method)
	}

	return methods, nil
}

// receiverBaseName 返回接收器的类型名以及是否为指针接收器
// *User -> User, true; User[T] -> User, false
func receiverBaseName(expr ast.Expr) (string, bool) {
	pointer := false
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}
	switch e := expr.(type) {
	case *ast.IndexExpr:
		expr = e.X
	case *ast.IndexListExpr:
		expr = e.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name, pointer
	}
	return "", pointer
}

// FindPackageDecl 在 file 所在包中查找名为 name 的包级声明（类型、函数、变量、常量）
// 跳过测试文件和 preflect 生成的文件
func (c *ParseContext) FindPackageDecl(file, name string) (token.Position, bool) {
	files, err := FindGoFiles(filepath.Dir(file))
	if err != nil {
		return token.Position{}, false
	}
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil || !bytes.Contains(content, []byte(name)) {
			continue
		}
		fset, node, err := c.parseFile(f)
		if err != nil || isPreflectGenerated(node) {
			continue
		}
		if pos := findDecl(node, name); pos.IsValid() {
			return fset.Position(pos), true
		}
	}
	return token.Position{}, false
}

func findDecl(node *ast.File, name string) token.Pos {
	for _, decl := range node.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil && d.Name.Name == name {
				return d.Name.Pos()
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					if s.Name.Name == name {
						return s.Name.Pos()
					}
				case *ast.ValueSpec:
					for _, ident := range s.Names {
						if ident.Name == name {
							return ident.Pos()
						}
					}
				}
			}
		}
	}
	return token.NoPos
}

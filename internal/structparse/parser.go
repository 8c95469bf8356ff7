package structparse

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"sync"
)

var (
	// ErrStructNotFound 文件中没有指定名称的类型
	ErrStructNotFound = errors.New("未找到结构体")
	// ErrNotStruct 指定名称的类型不是结构体
	ErrNotStruct = errors.New("类型不是结构体")
)

// parsedFile 缓存的解析结果
type parsedFile struct {
	fset *token.FileSet
	file *ast.File
	err  error
}

// ParseContext 解析上下文
// 同一次生成中多个结构体共享已解析的文件，可并发使用
type ParseContext struct {
	mu    sync.Mutex
	files map[string]*parsedFile
}

// NewParseContext 创建解析上下文
func NewParseContext() *ParseContext {
	return &ParseContext{files: make(map[string]*parsedFile)}
}

// ParseStruct 解析指定文件中的结构体（包级便捷函数）
func ParseStruct(filename, structName string) (*StructInfo, error) {
	return NewParseContext().ParseStruct(filename, structName)
}

// parseFile 解析文件，结果按绝对路径缓存
func (c *ParseContext) parseFile(filename string) (*token.FileSet, *ast.File, error) {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		absPath = filename
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if pf, ok := c.files[absPath]; ok {
		return pf.fset, pf.file, pf.err
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, absPath, nil, parser.ParseComments)
	if err != nil {
		err = fmt.Errorf("解析文件失败: %w", err)
	}
	c.files[absPath] = &parsedFile{fset: fset, file: file, err: err}
	return fset, file, err
}

// ParseStruct 解析指定文件中的结构体
func (c *ParseContext) ParseStruct(filename, structName string) (*StructInfo, error) {
	fset, node, err := c.parseFile(filename)
	if err != nil {
		return nil, err
	}

	typeSpec := findTypeSpec(node, structName)
	if typeSpec == nil {
		return nil, fmt.Errorf("%w: %s", ErrStructNotFound, structName)
	}
	structType, ok := typeSpec.Type.(*ast.StructType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, structName)
	}

	imports := extractImports(node)

	structInfo := &StructInfo{
		Name:        structName,
		PackageName: node.Name.Name,
		FilePath:    filename,
		Position:    fset.Position(typeSpec.Name.Pos()),
		Imports:     imports,
	}
	if typeSpec.TypeParams != nil {
		for _, field := range typeSpec.TypeParams.List {
			for _, name := range field.Names {
				structInfo.TypeParams = append(structInfo.TypeParams, name.Name)
			}
		}
	}

	structInfo.Fields = parseStructFields(fset, structType.Fields.List, imports)

	// 解析方法信息 - 需要搜索整个包中的所有文件
	methods, err := c.parseMethodsFromPackage(filename, structName)
	if err != nil {
		return nil, err
	}
	structInfo.Methods = methods

	return structInfo, nil
}

// findTypeSpec 查找文件中指定名称的类型声明
func findTypeSpec(node *ast.File, name string) *ast.TypeSpec {
	for _, decl := range node.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			if typeSpec, ok := spec.(*ast.TypeSpec); ok && typeSpec.Name.Name == name {
				return typeSpec
			}
		}
	}
	return nil
}

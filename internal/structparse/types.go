package structparse

import (
	"go/token"
	"strings"
)

// ImportInfo 导入信息
type ImportInfo struct {
	Alias       string // 显式别名（如果有）
	PackageName string // 源文件中引用该包使用的名称
	ImportPath  string // 完整导入路径
}

// CommentLine 单行注释及其位置
type CommentLine struct {
	Text     string         // 原始文本，包括 // 或 /* */
	Position token.Position // 注释起始位置
}

// MethodInfo 表示方法信息
type MethodInfo struct {
	Name         string // 方法名
	ReceiverName string // 接收器名称
	ReceiverType string // 接收器类型
	ReturnType   string // 返回类型
	FilePath     string // 方法所在文件的绝对路径
	Position     token.Position
}

// FieldInfo 表示结构体字段信息
type FieldInfo struct {
	Name        string         // 字段名，嵌入字段为类型名
	Type        string         // 字段类型，与源码写法一致
	Imports     []ImportInfo   // 字段类型引用的包
	Tag         string         // 字段标签（已去除反引号）
	TagPosition token.Position // 标签位置
	Doc         []CommentLine  // 字段上方的文档注释
	Comment     []CommentLine  // 字段行尾注释
	Embedded    bool           // 是否为嵌入字段
	Position    token.Position // 字段名位置
}

// IsBlank 是否为空白字段 _
func (f FieldInfo) IsBlank() bool {
	return f.Name == "_"
}

// Comments 返回文档注释和行尾注释
func (f FieldInfo) Comments() []CommentLine {
	lines := make([]CommentLine, 0, len(f.Doc)+len(f.Comment))
	lines = append(lines, f.Doc...)
	return append(lines, f.Comment...)
}

// StructInfo 表示结构体信息
type StructInfo struct {
	Name        string         // 结构体名称
	PackageName string         // 包名
	FilePath    string         // 结构体所在文件路径
	Position    token.Position // 结构体名位置
	TypeParams  []string       // 类型参数名，非泛型结构体为空
	Fields      []FieldInfo    // 字段列表
	Methods     []MethodInfo   // 方法列表
	Imports     []ImportInfo   // 文件的全部导入
}

// IsGeneric 是否为泛型结构体
func (s *StructInfo) IsGeneric() bool {
	return len(s.TypeParams) > 0
}

// HasMethod 是否已定义指定名称的方法（值接收器或指针接收器）
func (s *StructInfo) HasMethod(name string) bool {
	for _, m := range s.Methods {
		if m.Name == name {
			return true
		}
	}
	return false
}

// FieldByName 按字段名查找字段
func (s *StructInfo) FieldByName(name string) (FieldInfo, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// TypeName 返回结构体在所在包中的类型表达式，泛型结构体带上类型参数
func (s *StructInfo) TypeName() string {
	if !s.IsGeneric() {
		return s.Name
	}
	return s.Name + "[" + strings.Join(s.TypeParams, ", ") + "]"
}

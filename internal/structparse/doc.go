// Package structparse 提供 Go 结构体的静态分析，供代码生成器读取字段和方法信息。
//
// 本包支持以下功能：
//
//  1. 结构体字段解析 - 字段名、类型、标签以及字段上的注释（含位置信息）
//  2. 嵌入字段 - 嵌入字段以类型名作为字段名，不展开
//  3. 方法信息收集 - 扫描同一目录下的非测试文件，收集结构体的方法，用于检测生成方法的命名冲突
//  4. 类型引用的包 - 记录字段类型引用的导入路径以及源文件中使用的包名
//
// # 基本用法
//
//	info, err := structparse.ParseStruct("path/to/file.go", "StructName")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, field := range info.Fields {
//	    fmt.Printf("  字段: %s %s\n", field.Name, field.Type)
//	}
//
// 同一次生成处理多个结构体时，使用 ParseContext 复用已解析的文件：
//
//	ctx := structparse.NewParseContext()
//	info, err := ctx.ParseStruct(filename, structName)
//
// # 限制
//
// 字段类型按源码写法原样保留，不做类型检查。通过 dot import 引入的类型无法识别来源包。
package structparse

// Package fields 是 preflect 生成代码依赖的运行时库。
//
// 动态访问（@HasFields）：
//
//	// @HasFields
//	type User struct {
//	    ID   uint32
//	    Name string // @Preflect(ignore)
//	}
//
//	id, err := fields.GetField[uint32](&user, "ID")
//	_, err = fields.GetField[string](&user, "Name") // errors.Is(err, fields.ErrMissingField)
//
// 静态访问（@HasField）：每个字段生成一个 Field[S, T] 描述符和一个
// Field<Name>() 访问方法，调用方可用接口约束字段名与类型：
//
//	func readID(v interface{ FieldID() *uint32 }) uint32 {
//	    return *v.FieldID()
//	}
//
// 被忽略的字段不会生成描述符和访问方法，引用它们无法通过编译。
package fields

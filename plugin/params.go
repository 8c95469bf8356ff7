package plugin

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// OutputParam 所有注解共用的输出路径参数
const OutputParam = "output"

// ParseParamsFromStruct 从结构体的tag解析参数定义
// 支持的tag: name, required, default, description
//
// 示例:
//
//	type Params struct {
//	    Output string `param:"name=output,required=false,default=,description=输出文件路径"`
//	    Naming string `param:"name=naming,required=false,default=go,description=字段名风格: go/snake/camel"`
//	}
//
//	params := plugin.ParseParamsFromStruct(Params{})
func ParseParamsFromStruct(v any) []ParamDef {
	val := reflect.ValueOf(v)
	typ := val.Type()

	// 如果是指针,解引用
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	// 必须是结构体
	if typ.Kind() != reflect.Struct {
		return nil
	}

	var params []ParamDef

	// 遍历所有字段
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		// 获取 param tag
		tag := field.Tag.Get("param")
		if tag == "" {
			continue
		}

		// 解析tag
		paramDef := parseParamTag(tag)
		if paramDef.Name != "" {
			params = append(params, paramDef)
		}
	}

	return params
}

// parseParamTag 解析 param tag 字符串
// 格式: name=xxx,required=true,default=xxx,description=xxx
func parseParamTag(tag string) ParamDef {
	var param ParamDef

	// 简单的键值对解析
	pairs := splitTag(tag)
	for key, value := range pairs {
		switch key {
		case "name":
			param.Name = value
		case "required":
			param.Required = value == "true"
		case "default":
			param.Default = value
		case "description":
			param.Description = value
		}
	}

	return param
}

// splitTag 分割tag字符串为键值对
// 格式: key1=value1,key2=value2,...
func splitTag(tag string) map[string]string {
	result := make(map[string]string)

	var key, value string
	var inKey = true
	var escaped = false

	for i := 0; i < len(tag); i++ {
		ch := tag[i]

		// 处理转义
		if escaped {
			if inKey {
				key += string(ch)
			} else {
				value += string(ch)
			}
			escaped = false
			continue
		}

		if ch == '\\' {
			escaped = true
			continue
		}

		// 处理分隔符
		if ch == '=' && inKey {
			inKey = false
			continue
		}

		if ch == ',' {
			// 保存当前键值对
			if key != "" {
				result[key] = value
			}
			key = ""
			value = ""
			inKey = true
			continue
		}

		// 累积字符
		if inKey {
			key += string(ch)
		} else {
			value += string(ch)
		}
	}

	// 保存最后一个键值对
	if key != "" {
		result[key] = value
	}

	return result
}

// ParseParamBool 解析参数为bool值
func ParseParamBool(value string) bool {
	return cast.ToBool(value)
}

// ParseAnnotationParams 将注解的参数解析到目标结构体中
// annotation: 注解对象，包含参数键值对
// target: 目标结构体（必须是指针）
// paramDefs: 参数定义列表，用于应用默认值
//
// 示例:
//
//	var params HasFieldsParams
//	err := plugin.ParseAnnotationParams(annotation, &params, paramDefs)
//
// 注解中出现未定义的参数或缺少必填参数时返回错误
func ParseAnnotationParams(annotation *Annotation, target any, paramDefs []ParamDef) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return nil // 必须是非nil指针
	}

	val = val.Elem()
	typ := val.Type()

	if typ.Kind() != reflect.Struct {
		return nil // 必须是结构体
	}

	// 创建参数定义的映射，方便查找默认值
	defMap := make(map[string]ParamDef)
	for _, def := range paramDefs {
		defMap[def.Name] = def
	}

	// 检查未知参数，output 是所有生成器共用的参数
	var unknown []string
	for key := range annotation.Params {
		if _, ok := defMap[key]; !ok && key != OutputParam {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		known := []string{OutputParam}
		for _, def := range paramDefs {
			known = append(known, def.Name)
		}
		slices.Sort(known)
		return fmt.Errorf("@%s 不支持参数 %v，可用参数: %v", annotation.Name, unknown, known)
	}

	// 遍历结构体字段
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		// 解析 param tag 获取参数名
		tag := field.Tag.Get("param")
		if tag == "" {
			continue
		}

		paramDef := parseParamTag(tag)
		paramName := paramDef.Name
		if paramName == "" {
			continue
		}

		// 从注解中获取参数值
		paramValue := annotation.GetParam(paramName)

		// 如果注解中没有该参数，使用默认值
		if paramValue == "" {
			if paramDef.Required {
				return fmt.Errorf("@%s 缺少必填参数 %s", annotation.Name, paramName)
			}
			if def, ok := defMap[paramName]; ok {
				paramValue = def.Default
			}
		}

		// 设置字段值
		if err := setFieldValue(fieldVal, paramValue); err != nil {
			return fmt.Errorf("@%s 参数 %s=%q 无效: %w", annotation.Name, paramName, paramValue, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值，支持 string, int, bool 等基本类型
// 空字符串视为零值
func setFieldValue(field reflect.Value, value string) error {
	if value == "" {
		field.SetZero()
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intVal, err := cast.ToInt64E(value)
		if err != nil {
			return err
		}
		field.SetInt(intVal)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		uintVal, err := cast.ToUint64E(value)
		if err != nil {
			return err
		}
		field.SetUint(uintVal)
	case reflect.Bool:
		boolVal, err := cast.ToBoolE(value)
		if err != nil {
			return err
		}
		field.SetBool(boolVal)
	case reflect.Float32, reflect.Float64:
		floatVal, err := cast.ToFloat64E(value)
		if err != nil {
			return err
		}
		field.SetFloat(floatVal)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("不支持的参数类型 %s", field.Type())
		}
		field.Set(reflect.ValueOf(cast.ToStringSlice(splitList(value))))
	default:
		return fmt.Errorf("不支持的参数类型 %s", field.Type())
	}
	return nil
}

// splitList 将 a|b|c 形式的参数拆分为列表
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, "|") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/bytedance/sonic"
	"github.com/donutnomad/preflect/internal/preflectattr"
	"github.com/donutnomad/preflect/internal/structparse"
	"github.com/donutnomad/preflect/plugin"
	"github.com/samber/lo"
)

// inspectReport inspect 命令的输出
type inspectReport struct {
	Structs []inspectStruct `json:"structs"`
	Errors  []string        `json:"errors,omitempty"`
}

type inspectStruct struct {
	Name        string              `json:"name"`
	Package     string              `json:"package"`
	Position    string              `json:"position"`
	TypeParams  []string            `json:"type_params,omitempty"`
	Annotations []inspectAnnotation `json:"annotations"`
	Fields      []inspectField      `json:"fields"`
}

type inspectAnnotation struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

type inspectField struct {
	Name     string              `json:"name"`
	Type     string              `json:"type"`
	Attr     string              `json:"attr"`
	Ignored  bool                `json:"ignored"`
	Embedded bool                `json:"embedded,omitempty"`
	Keys     map[string][]string `json:"keys"` // key: 注解名
	Position string              `json:"position"`
}

// 只提供字段访问的注解，被忽略的字段没有可用的查找名
var accessAnnotations = []string{"HasFields", "HasField"}

// runInspect 输出带注解结构体的字段查找名和 helper 属性
func runInspect(args []string) {
	registry := mustRegistry()

	report, err := inspect(context.Background(), registry, defaultPatterns(args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}

	data, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))

	if len(report.Errors) > 0 {
		os.Exit(1)
	}
}

// inspect 扫描 patterns 下带注册注解的结构体
// 字段属性错误记录在 Errors 中，不中断扫描
func inspect(ctx context.Context, registry *plugin.Registry, patterns []string) (*inspectReport, error) {
	scanner := plugin.NewScanner(plugin.WithAnnotationFilter(registry.Annotations()...))
	result, err := scanner.Scan(ctx, patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}

	report := &inspectReport{Structs: []inspectStruct{}}
	for _, e := range result.Errors {
		report.Errors = append(report.Errors, e.Error())
	}

	parseCtx := structparse.NewParseContext()
	for _, at := range result.Structs {
		model, errs := preflectattr.Load(parseCtx, at.Target.FilePath, at.Target.Name, preflectattr.NamingGo)
		for _, e := range errs {
			report.Errors = append(report.Errors, e.Error())
		}
		if model == nil {
			continue
		}

		// 每个注解按自己的 naming 参数推导查找名
		namings := make(map[string]preflectattr.Naming, len(at.Annotations))
		for _, ann := range at.Annotations {
			naming, err := preflectattr.ParseNaming(ann.Params["naming"])
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %s: %v", at.Target.Location(), at.Target.Name, err))
				continue
			}
			namings[ann.Name] = naming
		}

		report.Structs = append(report.Structs, inspectStruct{
			Name:       model.Info.Name,
			Package:    model.Info.PackageName,
			Position:   model.Info.Position.String(),
			TypeParams: model.Info.TypeParams,
			Annotations: lo.Map(at.Annotations, func(ann *plugin.Annotation, _ int) inspectAnnotation {
				return inspectAnnotation{Name: ann.Name, Params: ann.Params}
			}),
			Fields: lo.Map(model.Fields, func(f preflectattr.Field, _ int) inspectField {
				return inspectField{
					Name:     f.Name,
					Type:     f.Type,
					Attr:     f.Attr.String(),
					Ignored:  f.Attr.Ignored(),
					Embedded: f.Embedded,
					Keys:     fieldKeys(f, namings),
					Position: f.Position.String(),
				}
			}),
		})
	}
	return report, nil
}

// fieldKeys 每个注解下字段的查找名
// 被忽略的字段仍参与 @PartialDrop，但不能通过访问类注解查找
func fieldKeys(f preflectattr.Field, namings map[string]preflectattr.Naming) map[string][]string {
	keys := make(map[string][]string, len(namings))
	for ann, n := range namings {
		if f.Attr.Ignored() && slices.Contains(accessAnnotations, ann) {
			continue
		}
		keys[ann] = f.Keys(n)
	}
	return keys
}

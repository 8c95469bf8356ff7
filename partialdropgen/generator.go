package partialdropgen

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/preflect/internal/preflectattr"
	"github.com/donutnomad/preflect/internal/structparse"
	"github.com/donutnomad/preflect/plugin"
)

const (
	generatorName  = "partialdrop"
	annotationName = "PartialDrop"
	methodName     = "DropAllFieldsExcept"
)

// PartialDropParams 定义 PartialDrop 注解支持的参数
type PartialDropParams struct {
	Naming string `param:"name=naming,required=false,default=go,description=字段名风格: go|snake|camel"`
}

// PartialDropGenerator 生成释放部分字段的 DropAllFieldsExcept 方法
// 输出为 jennifer 渲染的完整源码，由聚合器转换后与其他生成器合并
type PartialDropGenerator struct {
	plugin.BaseGenerator
}

func NewPartialDropGenerator() *PartialDropGenerator {
	gen := &PartialDropGenerator{
		BaseGenerator: *plugin.NewBaseGeneratorWithParamsStruct(
			generatorName,
			[]string{annotationName},
			[]plugin.TargetKind{plugin.TargetStruct},
			PartialDropParams{},
		),
	}
	gen.SetPriority(30)
	return gen
}

// Generate 执行代码生成
func (g *PartialDropGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()
	if len(ctx.Targets) == 0 {
		return result, nil
	}

	parseCtx := structparse.NewParseContext()
	fileModels := make(map[string][]*preflectattr.Model)

	for _, at := range ctx.Targets {
		ann := at.Annotation(annotationName)
		if ann == nil {
			continue
		}

		var params PartialDropParams
		if at.ParsedParams != nil {
			var ok bool
			params, ok = at.ParsedParams.(PartialDropParams)
			if !ok {
				result.AddError(fmt.Errorf("ParsedParams 类型断言失败: %T", at.ParsedParams))
				continue
			}
		}
		if ctx.Verbose {
			fmt.Printf("[%s] %s", generatorName, spew.Sdump(params))
		}

		naming, err := preflectattr.ParseNaming(params.Naming)
		if err != nil {
			result.AddErrorf(at.Target, "%v", err)
			continue
		}

		model, errs := preflectattr.Load(parseCtx, at.Target.FilePath, at.Target.Name, naming)
		if model == nil {
			result.AddErrorf(at.Target, "解析结构体失败: %v", errs[0])
			continue
		}
		// ignore 只影响字段访问，所有字段都参与释放
		errs = append(errs, model.CheckKeys(model.Fields)...)
		errs = append(errs, model.CheckNames(methodName)...)
		errs = append(errs, model.CheckPackageNames(parseCtx, importedNames(model)...)...)
		if len(errs) > 0 {
			for _, err := range errs {
				result.AddError(err)
			}
			continue
		}

		pkgConfig := ctx.GetPackageConfig(filepath.Dir(at.Target.FilePath))
		outputPath := plugin.GetOutputPath(at.Target, ann, "", pkgConfig, g.Name(), ctx.DefaultOutput)
		fileModels[outputPath] = append(fileModels[outputPath], model)

		if ctx.Verbose {
			fmt.Printf("[%s] 处理结构体 %s -> %s\n", generatorName, at.Target.Name, outputPath)
		}
	}

	for _, outputPath := range plugin.SortedKeys(fileModels) {
		models := fileModels[outputPath]
		slices.SortFunc(models, func(a, b *preflectattr.Model) int {
			return strings.Compare(a.Info.Name, b.Info.Name)
		})
		src, err := renderFile(models)
		if err != nil {
			result.AddError(fmt.Errorf("生成 %s 失败: %w", outputPath, err))
			continue
		}
		result.AddRawOutput(outputPath, src)
	}

	return result, nil
}

// importedNames 生成文件导入的包名
func importedNames(m *preflectattr.Model) []string {
	var names []string
	if !m.Info.IsGeneric() || len(m.Fields) > 0 {
		names = append(names, "drop")
	}
	if len(m.Fields) > 0 {
		names = append(names, "errors")
	}
	return names
}

package hasfieldsgen

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
	generatorName  = "hasfields"
	annotationName = "HasFields"
)

// HasFieldsParams 定义 HasFields 注解支持的参数
type HasFieldsParams struct {
	Naming string `param:"name=naming,required=false,default=go,description=查找名风格: go|snake|camel"`
}

// HasFieldsGenerator 为结构体生成按名称访问字段的方法
type HasFieldsGenerator struct {
	plugin.BaseGenerator
}

func NewHasFieldsGenerator() *HasFieldsGenerator {
	gen := &HasFieldsGenerator{
		BaseGenerator: *plugin.NewBaseGeneratorWithParamsStruct(
			generatorName,
			[]string{annotationName},
			[]plugin.TargetKind{plugin.TargetStruct},
			HasFieldsParams{},
		),
	}
	gen.SetPriority(10)
	return gen
}

// Generate 执行代码生成
func (g *HasFieldsGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
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

		var params HasFieldsParams
		if at.ParsedParams != nil {
			var ok bool
			params, ok = at.ParsedParams.(HasFieldsParams)
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
		errs = append(errs, validate(model)...)
		errs = append(errs, model.CheckPackageNames(parseCtx, "fields")...)
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
		result.AddDefinition(outputPath, generateDefinition(models))
	}

	return result, nil
}

// validate 检查查找名冲突和方法名冲突
func validate(m *preflectattr.Model) []error {
	errs := m.CheckKeys(preflectattr.Accessible(m.Fields))
	return append(errs, m.CheckNames(generatedMethods...)...)
}

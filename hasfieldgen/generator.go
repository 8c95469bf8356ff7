package hasfieldgen

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/preflect/internal/preflectattr"
	"github.com/donutnomad/preflect/internal/structparse"
	"github.com/donutnomad/preflect/internal/utils"
	"github.com/donutnomad/preflect/plugin"
	"github.com/samber/lo"
)

const (
	generatorName  = "hasfield"
	annotationName = "HasField"
)

// HasFieldParams 定义 HasField 注解支持的参数
type HasFieldParams struct {
	Naming string `param:"name=naming,required=false,default=go,description=查找名风格: go|snake|camel"`
}

// HasFieldGenerator 为结构体的每个字段生成静态类型的描述符和访问方法
type HasFieldGenerator struct {
	plugin.BaseGenerator
}

func NewHasFieldGenerator() *HasFieldGenerator {
	gen := &HasFieldGenerator{
		BaseGenerator: *plugin.NewBaseGeneratorWithParamsStruct(
			generatorName,
			[]string{annotationName},
			[]plugin.TargetKind{plugin.TargetStruct},
			HasFieldParams{},
		),
	}
	gen.SetPriority(20)
	return gen
}

// target 一个待生成的结构体及其描述符
type target struct {
	model   *preflectattr.Model
	entries []entry
}

// entry 一个描述符：字段的一个查找名
type entry struct {
	ident string // 描述符名，访问方法为 Field<ident>
	key   string
	field preflectattr.Field
}

// Generate 执行代码生成
func (g *HasFieldGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()
	if len(ctx.Targets) == 0 {
		return result, nil
	}

	parseCtx := structparse.NewParseContext()
	fileTargets := make(map[string][]*target)

	for _, at := range ctx.Targets {
		ann := at.Annotation(annotationName)
		if ann == nil {
			continue
		}

		var params HasFieldParams
		if at.ParsedParams != nil {
			var ok bool
			params, ok = at.ParsedParams.(HasFieldParams)
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
		if model.Info.IsGeneric() {
			result.AddErrorf(at.Target, "@%s 不支持泛型结构体，字段描述符无法声明为泛型变量", annotationName)
			continue
		}

		entries, entryErrs := buildEntries(model)
		errs = append(errs, entryErrs...)
		errs = append(errs, checkImports(model)...)
		errs = append(errs, model.CheckPackageNames(parseCtx, generatedNames(model, entries)...)...)
		if len(errs) > 0 {
			for _, err := range errs {
				result.AddError(err)
			}
			continue
		}

		pkgConfig := ctx.GetPackageConfig(filepath.Dir(at.Target.FilePath))
		outputPath := plugin.GetOutputPath(at.Target, ann, "", pkgConfig, g.Name(), ctx.DefaultOutput)
		fileTargets[outputPath] = append(fileTargets[outputPath], &target{model: model, entries: entries})

		if ctx.Verbose {
			fmt.Printf("[%s] 处理结构体 %s -> %s (%d 个描述符)\n", generatorName, at.Target.Name, outputPath, len(entries))
		}
	}

	for _, outputPath := range plugin.SortedKeys(fileTargets) {
		targets := fileTargets[outputPath]
		slices.SortFunc(targets, func(a, b *target) int {
			return strings.Compare(a.model.Info.Name, b.model.Info.Name)
		})
		result.AddDefinition(outputPath, generateDefinition(targets))
	}

	return result, nil
}

// buildEntries 为每个可访问字段的每个查找名生成描述符
// 查找名转换为导出标识符，转换失败或标识符冲突时报错
func buildEntries(m *preflectattr.Model) ([]entry, []error) {
	accessible := preflectattr.Accessible(m.Fields)
	errs := m.CheckKeys(accessible)

	var entries []entry
	owner := make(map[string]entry)
	for _, f := range accessible {
		for _, key := range m.Keys(f) {
			ident := utils.ExportedName(key)
			if ident == "" {
				errs = append(errs, fmt.Errorf("%s: 字段 %s: 查找名 %q 无法转换为 Go 标识符", f.Position, f.Name, key))
				continue
			}
			if other, ok := owner[ident]; ok {
				if other.key != key {
					errs = append(errs, fmt.Errorf("%s: 字段 %s: 查找名 %q 与 %q 转换为同一个标识符 %s", f.Position, f.Name, key, other.key, ident))
				}
				continue
			}
			e := entry{ident: ident, key: key, field: f}
			owner[ident] = e
			entries = append(entries, e)
		}
	}

	methods := make([]string, 0, len(entries))
	for _, e := range entries {
		methods = append(methods, accessorName(e))
	}
	errs = append(errs, m.CheckNames(methods...)...)
	return entries, errs
}

// checkImports 字段类型引用的包名不能与生成代码使用的包名相同
// 点导入的类型无法在生成文件中引用，源文件有点导入时直接报错
func checkImports(m *preflectattr.Model) []error {
	var errs []error
	accessible := preflectattr.Accessible(m.Fields)
	for _, imp := range m.Info.Imports {
		if imp.Alias == "." && len(accessible) > 0 {
			errs = append(errs, fmt.Errorf("%s: %s: @%s 不支持点导入 %q，请改用包名引用", m.Info.Position, m.Info.Name, annotationName, imp.ImportPath))
		}
	}
	for _, f := range accessible {
		for _, imp := range f.Imports {
			name := importName(imp)
			if name == "fields" || name == "unsafe" {
				errs = append(errs, fmt.Errorf("%s: 字段 %s: 类型引用的包名 %s 与生成代码冲突", f.Position, f.Name, name))
			}
		}
	}
	return errs
}

// generatedNames 生成文件引入的包级标识符和导入名
func generatedNames(m *preflectattr.Model, entries []entry) []string {
	names := []string{m.Info.Name + "Fields"}
	if len(entries) == 0 {
		return names
	}
	names = append(names, "fields", "unsafe")
	for _, e := range entries {
		for _, imp := range e.field.Imports {
			names = append(names, importName(imp))
		}
	}
	return lo.Uniq(names)
}

func accessorName(e entry) string {
	return "Field" + e.ident
}

// importName 字段类型中使用的包名
func importName(imp structparse.ImportInfo) string {
	if imp.Alias != "" {
		return imp.Alias
	}
	return imp.PackageName
}

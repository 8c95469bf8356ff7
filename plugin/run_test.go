package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/donutnomad/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// namesGenerator 为每个目标生成返回类型名的函数，输出到默认路径
type namesGenerator struct {
	BaseGenerator
}

type namesParams struct {
	Suffix string `param:"name=suffix,required=false,default=Name,description=函数名后缀"`
}

func newNamesGenerator() *namesGenerator {
	return &namesGenerator{
		BaseGenerator: *NewBaseGeneratorWithParamsStruct("names", []string{"Names"}, []TargetKind{TargetStruct}, namesParams{}),
	}
}

func (g *namesGenerator) Generate(ctx *GenerateContext) (*GenerateResult, error) {
	result := NewGenerateResult()
	files := make(map[string]*gg.Generator)
	for _, target := range ctx.Targets {
		params := target.ParsedParams.(namesParams)
		ann := target.Annotation("Names")
		path := GetOutputPath(target.Target, ann, "", ctx.GetPackageConfig(filepath.Dir(target.Target.FilePath)), g.Name(), ctx.DefaultOutput)

		gen, ok := files[path]
		if !ok {
			gen = gg.New()
			gen.SetPackage(target.Target.PackageName)
			files[path] = gen
		}
		gen.Body().NewFunction(target.Target.Name+params.Suffix).
			AddResult("", "string").
			AddBody(gg.Return(gg.Lit(target.Target.Name)))
	}
	for path, gen := range files {
		result.AddDefinition(path, gen)
	}
	return result, nil
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_DefaultOutputAndParams(t *testing.T) {
	tmpDir := t.TempDir()
	writeSource(t, tmpDir, "model.go", `package model

// @Names
type User struct{}

// @Names(suffix=Label)
type Order struct{}
`)

	registry := NewRegistry()
	registry.MustRegister(newNamesGenerator())

	stats, err := RunWithOptionsAndStats(context.Background(), &RunOptions{
		Registry: registry,
		Patterns: []string{tmpDir},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TargetCount)
	assert.Equal(t, 1, stats.FileCount)

	data, err := os.ReadFile(filepath.Join(tmpDir, "model_preflect.go"))
	require.NoError(t, err)
	output := string(data)
	assert.Contains(t, output, Header)
	assert.Contains(t, output, "// ================ names ================")
	assert.Contains(t, output, "func UserName() string")
	assert.Contains(t, output, "func OrderLabel() string")
	// 按源码顺序输出
	assert.Less(t, strings.Index(output, "UserName"), strings.Index(output, "OrderLabel"))
}

func TestRun_SkipsUnchangedFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeSource(t, tmpDir, "model.go", "package model\n\n// @Names\ntype User struct{}\n")

	registry := NewRegistry()
	registry.MustRegister(newNamesGenerator())
	opts := &RunOptions{Registry: registry, Patterns: []string{tmpDir}}

	_, err := RunWithOptionsAndStats(context.Background(), opts)
	require.NoError(t, err)

	stats, err := RunWithOptionsAndStats(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UnchangedCount)
}

func TestRun_Check(t *testing.T) {
	tmpDir := t.TempDir()
	src := writeSource(t, tmpDir, "model.go", "package model\n\n// @Names\ntype User struct{}\n")

	registry := NewRegistry()
	registry.MustRegister(newNamesGenerator())

	check := &RunOptions{Registry: registry, Patterns: []string{tmpDir}, Check: true}

	// 生成文件不存在
	stats, err := RunWithOptionsAndStats(context.Background(), check)
	require.ErrorIs(t, err, ErrStale)
	assert.Len(t, stats.StaleFiles, 1)
	_, statErr := os.Stat(filepath.Join(tmpDir, "model_preflect.go"))
	assert.True(t, os.IsNotExist(statErr), "check 模式不应写入文件")

	// 生成后一致
	require.NoError(t, Run(context.Background(), registry, tmpDir))
	stats, err = RunWithOptionsAndStats(context.Background(), check)
	require.NoError(t, err)
	assert.Empty(t, stats.StaleFiles)

	// 源码变化后过期
	require.NoError(t, os.WriteFile(src, []byte("package model\n\n// @Names(suffix=Label)\ntype User struct{}\n"), 0644))
	_, err = RunWithOptionsAndStats(context.Background(), check)
	require.ErrorIs(t, err, ErrStale)
}

func TestRun_UnsupportedTarget(t *testing.T) {
	tmpDir := t.TempDir()
	writeSource(t, tmpDir, "model.go", `package model

// @Names
type Status int

// @Names
type Reader interface{ Read() }

// @Names
type User struct{}
`)

	registry := NewRegistry()
	registry.MustRegister(newNamesGenerator())

	err := Run(context.Background(), registry, tmpDir)
	require.Error(t, err)

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	require.Len(t, runErr.Errors, 2)

	var unsupported *UnsupportedTargetError
	require.True(t, errors.As(runErr.Errors[0], &unsupported))
	assert.Equal(t, "Names", unsupported.Annotation)
	assert.Contains(t, err.Error(), "2 个错误")
	for _, e := range runErr.Errors {
		assert.Contains(t, e.Error(), "@Names 只能用于 struct")
	}

	// 支持的目标仍然生成
	data, readErr := os.ReadFile(filepath.Join(tmpDir, "model_preflect.go"))
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "func UserName() string")
}

func TestRun_InvalidParams(t *testing.T) {
	tmpDir := t.TempDir()
	writeSource(t, tmpDir, "model.go", "package model\n\n// @Names(sufix=X)\ntype User struct{}\n")

	registry := NewRegistry()
	registry.MustRegister(newNamesGenerator())

	err := Run(context.Background(), registry, tmpDir)
	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	require.Len(t, runErr.Errors, 1)
	assert.Contains(t, runErr.Errors[0].Error(), "model.go:4:6: User: 解析参数失败")
	assert.Contains(t, runErr.Errors[0].Error(), "不支持参数 [sufix]")
}

func TestRun_PackageConfigOutput(t *testing.T) {
	tmpDir := t.TempDir()
	writeSource(t, tmpDir, "model.go", `// go:preflect: plugin:names -output $PACKAGE_names
package model

// @Names
type User struct{}

// @Names(output=custom)
type Order struct{}
`)

	registry := NewRegistry()
	registry.MustRegister(newNamesGenerator())
	require.NoError(t, Run(context.Background(), registry, tmpDir))

	data, err := os.ReadFile(filepath.Join(tmpDir, "model_names.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "UserName")
	assert.NotContains(t, string(data), "OrderName")

	data, err = os.ReadFile(filepath.Join(tmpDir, "custom.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "OrderName")
}

func TestScanner_TypeKindsAndGroupedDecl(t *testing.T) {
	tmpDir := t.TempDir()
	writeSource(t, tmpDir, "model.go", `package model

type (
	// @Names
	A struct{}

	B struct{}

	// @Names
	C []int
)

// @Names
type Handler func()
`)
	// 生成文件和测试文件不参与扫描
	writeSource(t, tmpDir, "model_preflect.go", "package model\n\n// @Names\ntype Generated struct{}\n")
	writeSource(t, tmpDir, "model_test.go", "package model\n\n// @Names\ntype InTest struct{}\n")

	result, err := NewScanner(WithAnnotationFilter("Names")).Scan(context.Background(), tmpDir)
	require.NoError(t, err)

	require.Len(t, result.Structs, 1)
	assert.Equal(t, "A", result.Structs[0].Target.Name)
	assert.Equal(t, 5, result.Structs[0].Target.Position.Line)

	require.Len(t, result.Types, 2)
	names := []string{result.Types[0].Target.Name, result.Types[1].Target.Name}
	assert.ElementsMatch(t, []string{"C", "Handler"}, names)
	assert.Equal(t, TargetType, result.Types[0].Target.Kind)
}

func TestScanner_ReportsBrokenFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeSource(t, tmpDir, "broken.go", "package model\n\n// @Names\ntype User struct{\n")

	result, err := NewScanner().Scan(context.Background(), tmpDir)
	require.NoError(t, err)
	assert.Empty(t, result.All())
	assert.Len(t, result.Errors, 1)
}

func TestDispatchTargets_IndependentParams(t *testing.T) {
	target := &AnnotatedTarget{
		Target:      &Target{Kind: TargetStruct, Name: "User", FilePath: "a.go"},
		Annotations: ParseAnnotations("// @Names @Other"),
	}

	registry := NewRegistry()
	registry.MustRegister(newNamesGenerator())
	registry.MustRegister(&mockGenerator{BaseGenerator: *NewBaseGenerator("other", []string{"Other"}, []TargetKind{TargetStruct})})

	dispatch, errs := registry.DispatchTargets(&ScanResult{Structs: []*AnnotatedTarget{target}})
	assert.Empty(t, errs)
	require.Len(t, dispatch["names"], 1)
	require.Len(t, dispatch["other"], 1)
	assert.NotSame(t, dispatch["names"][0], dispatch["other"][0])
	assert.Same(t, target.Target, dispatch["names"][0].Target)
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"b.go": 2, "a.go": 1, "c.go": 3}
	assert.Equal(t, []string{"a.go", "b.go", "c.go"}, SortedKeys(m))
	assert.Empty(t, SortedKeys(map[string]int{}))
}

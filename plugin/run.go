package plugin

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/donutnomad/gg"
	"github.com/donutnomad/preflect/internal/utils"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/exp/maps"
)

// Header 生成文件的头部注释
const Header = "Code generated by preflect. DO NOT EDIT."

// ErrStale check 模式下生成文件与源码不一致
var ErrStale = errors.New("生成文件已过期，请重新运行 preflect gen")

// Run 运行代码生成
// 1. 扫描指定路径的注解
// 2. 将目标分发给对应的生成器
// 3. 执行生成器
// 4. 合并同一文件的 gg 定义并写入文件
func Run(ctx context.Context, registry *Registry, patterns ...string) error {
	opts := &RunOptions{
		Registry: registry,
		Patterns: patterns,
	}
	return RunWithOptions(ctx, opts)
}

// RunGlobal 使用全局注册表运行
func RunGlobal(ctx context.Context, patterns ...string) error {
	return Run(ctx, globalRegistry, patterns...)
}

// RunOptions 运行选项
type RunOptions struct {
	Registry *Registry
	Patterns []string
	Verbose  bool
	Output   string // 命令行指定的默认输出路径（最低优先级）
	Async    bool   // 是否异步执行生成器
	Check    bool   // 只比较生成结果与磁盘上的文件，不写入
}

// RunStats 运行统计信息
type RunStats struct {
	ScanDuration     time.Duration // 扫描耗时
	GenerateDuration time.Duration // 生成耗时
	TotalDuration    time.Duration // 总耗时
	TargetCount      int           // 目标数量
	FileCount        int           // 生成文件数量
	UnchangedCount   int           // 内容未变化而跳过写入的文件数量
	StaleFiles       []string      // check 模式下内容不一致的文件
}

// RunWithOptions 带选项运行
func RunWithOptions(ctx context.Context, opts *RunOptions) error {
	_, err := RunWithOptionsAndStats(ctx, opts)
	return err
}

// RunWithOptionsAndStats 带选项运行并返回统计信息
func RunWithOptionsAndStats(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	totalStart := time.Now()
	stats := &RunStats{}

	registry := opts.Registry
	if registry == nil {
		registry = globalRegistry
	}

	// 获取所有已注册的注解
	annotations := registry.Annotations()
	if len(annotations) == 0 {
		return nil, fmt.Errorf("没有已注册的生成器")
	}

	// 扫描
	scanStart := time.Now()
	scanner := NewScanner(
		WithAnnotationFilter(annotations...),
		WithScannerVerbose(opts.Verbose),
	)
	result, err := scanner.Scan(ctx, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}
	stats.ScanDuration = time.Since(scanStart)

	var allErrors []error
	allErrors = append(allErrors, result.Errors...)

	if len(result.All()) == 0 {
		if opts.Verbose {
			fmt.Println("没有找到任何带注解的目标")
		}
		stats.TotalDuration = time.Since(totalStart)
		return stats, reportErrors(allErrors)
	}

	stats.TargetCount = len(result.All())
	if opts.Verbose {
		fmt.Printf("找到 %d 个带注解的目标 (扫描耗时: %v)\n", stats.TargetCount, stats.ScanDuration)
	}

	generateStart := time.Now()

	// 分发目标
	dispatch, dispatchErrors := registry.DispatchTargets(result)
	allErrors = append(allErrors, dispatchErrors...)

	// 按优先级排序生成器名称（优先级数字越小越靠前，相同优先级按名称）
	genNames := maps.Keys(dispatch)
	slices.SortFunc(genNames, func(a, b string) int {
		genA, _ := registry.GetByName(a)
		genB, _ := registry.GetByName(b)
		return cmp.Or(genA.Priority()-genB.Priority(), cmp.Compare(a, b))
	})

	// 先串行解析所有目标的参数（避免并发修改共享数据）
	for _, genName := range genNames {
		gen, ok := registry.GetByName(genName)
		if !ok {
			continue
		}
		var valid []*AnnotatedTarget
		for _, target := range dispatch[genName] {
			if err := parseTargetParams(gen, target); err != nil {
				allErrors = append(allErrors, fmt.Errorf("%s: %s: 解析参数失败: %w",
					target.Target.Location(), target.Target.Name, err))
				continue
			}
			valid = append(valid, target)
		}
		dispatch[genName] = valid
	}

	// genResultItem 存储单个生成器的执行结果
	type genResultItem struct {
		genName string
		result  *GenerateResult
		err     error
	}

	// 执行生成器的函数
	executeGenerator := func(genName string) genResultItem {
		targets := dispatch[genName]
		gen, ok := registry.GetByName(genName)
		if !ok || len(targets) == 0 {
			return genResultItem{genName: genName}
		}

		if opts.Verbose {
			fmt.Printf("执行生成器: %s (开始处理 %d 个目标)\n", genName, len(targets))
		}

		genCtx := &GenerateContext{
			Targets:        targets,
			PackageConfigs: result.PackageConfigs,
			DefaultOutput:  opts.Output,
			Verbose:        opts.Verbose,
		}

		nt1 := time.Now()
		genResult, err := gen.Generate(genCtx)
		if opts.Verbose {
			fmt.Printf("执行生成器: %s (耗时: %v)\n", genName, time.Since(nt1))
		}

		return genResultItem{genName: genName, result: genResult, err: err}
	}

	// 收集结果
	genResults := make(map[string]*GenerateResult)
	collect := func(item genResultItem) {
		if item.err != nil {
			allErrors = append(allErrors, fmt.Errorf("生成器 %s 执行失败: %w", item.genName, item.err))
			return
		}
		if item.result != nil {
			genResults[item.genName] = item.result
		}
	}

	if opts.Async {
		// 异步执行每个生成器
		resultChan := make(chan genResultItem, len(genNames))
		var wg sync.WaitGroup

		for _, genName := range genNames {
			wg.Add(1)
			go func(genName string) {
				defer wg.Done()
				resultChan <- executeGenerator(genName)
			}(genName)
		}

		// 等待所有生成器完成
		go func() {
			wg.Wait()
			close(resultChan)
		}()

		for item := range resultChan {
			collect(item)
		}
	} else {
		// 同步执行每个生成器
		for _, genName := range genNames {
			collect(executeGenerator(genName))
		}
	}

	// 收集所有 gg 定义，按输出路径分组
	// key: 输出文件路径, value: []*gg.Generator (多个生成器可能输出到同一文件)
	fileDefinitions := make(map[string][]*gg.Generator)
	// 生成器名称，用于添加分隔符
	fileGenNames := make(map[string][]string)

	// 按优先级顺序处理结果
	for _, genName := range genNames {
		genResult, ok := genResults[genName]
		if !ok {
			continue
		}

		for _, path := range SortedKeys(genResult.Definitions) {
			fileDefinitions[path] = append(fileDefinitions[path], genResult.Definitions[path])
			fileGenNames[path] = append(fileGenNames[path], genName)
		}

		// 原始字节输出转换为 gg.Generator 后加入 fileDefinitions
		for _, path := range SortedKeys(genResult.RawOutputs) {
			parsedGen, err := ParseSourceToGG(genResult.RawOutputs[path])
			if err != nil {
				allErrors = append(allErrors, fmt.Errorf("解析原始输出 %s 失败: %w", path, err))
				continue
			}
			fileDefinitions[path] = append(fileDefinitions[path], parsedGen)
			fileGenNames[path] = append(fileGenNames[path], genName)
		}

		allErrors = append(allErrors, genResult.Errors...)
	}

	// 合并同一文件的定义并写入
	for _, path := range SortedKeys(fileDefinitions) {
		merged, err := mergeDefinitionsWithSeparator(fileDefinitions[path], fileGenNames[path])
		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("合并文件 %s 的定义失败: %w", path, err))
			continue
		}

		if opts.Check {
			diff, err := checkGGFile(path, merged)
			if err != nil {
				allErrors = append(allErrors, fmt.Errorf("检查文件 %s 失败: %w", path, err))
				continue
			}
			stats.FileCount++
			if diff != "" {
				stats.StaleFiles = append(stats.StaleFiles, path)
				fmt.Print(diff)
			}
			continue
		}

		changed, err := writeGGFile(path, merged)
		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("写入文件 %s 失败: %w", path, err))
			continue
		}
		stats.FileCount++
		if changed {
			fmt.Printf("生成文件: %s\n", path)
		} else {
			stats.UnchangedCount++
			if opts.Verbose {
				fmt.Printf("文件未变化: %s\n", path)
			}
		}
	}

	stats.GenerateDuration = time.Since(generateStart)
	stats.TotalDuration = time.Since(totalStart)

	if err := reportErrors(allErrors); err != nil {
		return stats, err
	}
	if len(stats.StaleFiles) > 0 {
		return stats, fmt.Errorf("%w: %s", ErrStale, strings.Join(stats.StaleFiles, ", "))
	}
	return stats, nil
}

// parseTargetParams 将目标上属于该生成器的注解参数解析到参数结构体
func parseTargetParams(gen Generator, target *AnnotatedTarget) error {
	// 创建参数结构体实例
	paramsProto := gen.NewParams()
	if paramsProto == nil {
		return nil // 该生成器不需要参数
	}
	val := reflect.ValueOf(paramsProto)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("NewParams() 必须返回指针类型, 得到: %T", paramsProto)
	}

	// 找到目标上属于当前生成器的注解
	var targetAnn *Annotation
	for _, ann := range target.Annotations {
		if slices.Contains(gen.Annotations(), ann.Name) {
			targetAnn = ann
			break
		}
	}
	if targetAnn == nil {
		return nil
	}

	if err := ParseAnnotationParams(targetAnn, paramsProto, gen.ParamDefs()); err != nil {
		return err
	}
	// 存储解析后的参数（解引用指针）
	target.ParsedParams = val.Elem().Interface()
	return nil
}

// reportErrors 打印所有错误并汇总为一个错误
func reportErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	for _, e := range errs {
		fmt.Printf("错误: %v\n", e)
	}
	return &RunError{Errors: errs}
}

// RunError 生成过程中出现的全部错误
type RunError struct {
	Errors []error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("生成过程中出现 %d 个错误", len(e.Errors))
}

func (e *RunError) Unwrap() []error {
	return e.Errors
}

// mergeDefinitionsWithSeparator 合并多个 gg.Generator 定义到一个文件，并添加分隔符
func mergeDefinitionsWithSeparator(definitions []*gg.Generator, genNames []string) (*gg.Generator, error) {
	if len(definitions) == 0 {
		return nil, fmt.Errorf("没有定义需要合并")
	}

	// 创建新的 generator 用于合并
	merged := gg.New()
	merged.SetHeader(Header)

	// 收集包名
	var pkgName string
	for _, def := range definitions {
		if def.PackageName() != "" {
			if pkgName == "" {
				pkgName = def.PackageName()
			} else if pkgName != def.PackageName() {
				return nil, fmt.Errorf("包名不一致: %s vs %s", pkgName, def.PackageName())
			}
		}
	}
	if pkgName != "" {
		merged.SetPackage(pkgName)
	}

	// 合并每个定义的 body，并添加分隔符
	// 注意：不要手动收集 imports，因为 def.Imports() 只返回路径不包含别名
	// 直接使用 Merge 方法，它会正确处理 imports 和别名
	for i, def := range definitions {
		genName := "unknown"
		if i < len(genNames) {
			genName = genNames[i]
		}
		separator := fmt.Sprintf("// ================ %s ================", genName)
		merged.Body().AddLine()
		merged.Body().AddString(separator)
		merged.Body().AddLine()

		merged.Merge(def)
	}

	return merged, nil
}

// writeGGFile 将 gg 定义写入文件，内容未变化时不写入
func writeGGFile(path string, gen *gg.Generator) (bool, error) {
	// 确保目录存在
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("创建目录失败: %w", err)
	}

	formatted, err := utils.FormatSource(path, gen.Bytes())
	if err != nil {
		// 仍然写入未格式化的内容，便于排查
		_ = os.WriteFile(path, gen.Bytes(), 0644)
		return true, err
	}
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, formatted) {
		return false, nil
	}
	return true, os.WriteFile(path, formatted, 0644)
}

// checkGGFile 比较生成结果与磁盘上的文件，返回 unified diff，内容一致时返回空字符串
func checkGGFile(path string, gen *gg.Generator) (string, error) {
	formatted, err := utils.FormatSource(path, gen.Bytes())
	if err != nil {
		return "", err
	}
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	if bytes.Equal(existing, formatted) {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(existing)),
		B:        difflib.SplitLines(string(formatted)),
		FromFile: path + " (磁盘)",
		ToFile:   path + " (生成)",
		Context:  3,
	})
}

// GetOutputPath 根据注解参数和默认规则计算输出路径
// 优先级：注解参数 > 包级插件配置 > 包级默认配置 > 命令行参数 > 默认文件名
// 模板变量：
//   - $FILE: 源文件名（不含 .go 后缀）
//   - $PACKAGE: 包名
func GetOutputPath(target *Target, ann *Annotation, defaultFileName string, pkgConfig *PackageConfig, pluginName string, cmdOutput string) string {
	var output string

	// 1. 优先使用注解参数
	if ann != nil {
		output = ann.GetParam(OutputParam)
	}

	// 2. 其次使用包级配置
	if output == "" && pkgConfig != nil {
		output = pkgConfig.GetPluginOutput(strings.ToLower(pluginName))
	}

	// 3. 再次使用命令行参数
	if output == "" && cmdOutput != "" {
		output = cmdOutput
	}

	// 4. 如果都没有，使用默认输出
	if output == "" {
		return GetDefaultOutputPath(target, defaultFileName)
	}

	// 处理模板变量
	output = replaceTemplateVars(output, target)

	// 确保有 .go 后缀
	if !strings.HasSuffix(output, ".go") {
		output += ".go"
	}

	if filepath.IsAbs(output) {
		return output
	}
	// 相对于源文件目录
	return filepath.Join(filepath.Dir(target.FilePath), output)
}

// replaceTemplateVars 替换模板变量
// 支持的变量：
//   - $FILE: 源文件名（不含 .go 后缀）
//   - $PACKAGE: 包名
func replaceTemplateVars(template string, target *Target) string {
	fileName := strings.TrimSuffix(filepath.Base(target.FilePath), ".go")
	template = strings.ReplaceAll(template, "$FILE", fileName)
	template = strings.ReplaceAll(template, "$PACKAGE", target.PackageName)
	return template
}

// GetDefaultOutputPath 获取默认输出路径
// 默认与源文件同目录，文件名为 $FILE_preflect.go
func GetDefaultOutputPath(target *Target, defaultFileName string) string {
	if defaultFileName == "" {
		defaultFileName = "$FILE" + GeneratedFileSuffix
	}
	defaultFileName = replaceTemplateVars(defaultFileName, target)
	return filepath.Join(filepath.Dir(target.FilePath), defaultFileName)
}

// SortedKeys 返回按字典序排列的 map 键，保证生成顺序稳定
func SortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

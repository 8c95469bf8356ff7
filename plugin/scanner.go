package plugin

import (
	"bufio"
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"
)

// Scanner 两阶段并行注解扫描器
// 第一阶段：快速文本匹配，找出可能包含注解的文件
// 第二阶段：对匹配的文件进行 AST 解析
type Scanner struct {
	workers int
	verbose bool

	// 注解过滤器（可选）
	annotationFilter []string
}

// ScannerOption 扫描器选项
type ScannerOption func(*Scanner)

func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithScannerVerbose(v bool) ScannerOption {
	return func(s *Scanner) {
		s.verbose = v
	}
}

func WithAnnotationFilter(annotations ...string) ScannerOption {
	return func(s *Scanner) {
		s.annotationFilter = annotations
	}
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GeneratedFileSuffix 生成文件的默认后缀，扫描时跳过
const GeneratedFileSuffix = "_preflect.go"

// skipSuffixes 扫描时跳过的文件后缀
var skipSuffixes = []string{"_test.go", GeneratedFileSuffix}

// IsSkippedFile 判断文件是否不参与扫描（测试文件、生成文件）
func IsSkippedFile(path string) bool {
	for _, suffix := range skipSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// quickMatchRegex 快速匹配注解的正则
// 匹配 @Name 或 @Name(...) 模式
var quickMatchRegex = regexp.MustCompile(`@(\w+)(?:\([^)]*\))?`)

// Scan 扫描指定路径
// 支持: ./... ./pkg/... ./pkg /abs/path/...
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	// 收集所有文件
	allFiles, err := s.collectFiles(patterns)
	if err != nil {
		return nil, err
	}

	if len(allFiles) == 0 {
		return &ScanResult{}, nil
	}

	// ========== 第一阶段：快速匹配 ==========
	matchedFiles, err := s.quickMatch(ctx, allFiles)
	if err != nil {
		return nil, err
	}

	if len(matchedFiles) == 0 {
		return &ScanResult{}, nil
	}

	// ========== 第二阶段：AST 解析 ==========
	return s.parseFiles(ctx, matchedFiles)
}

// runWorkers 使用固定数量的工作者并行处理文件
func runWorkers[R any](ctx context.Context, workers int, files []string, fn func(string) R) []R {
	resultCh := make(chan R, len(files))
	fileCh := make(chan string, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case file, ok := <-fileCh:
					if !ok {
						return
					}
					resultCh <- fn(file)
				}
			}
		}()
	}

	// 发送文件
	go func() {
		defer close(fileCh)
		for _, file := range files {
			select {
			case <-ctx.Done():
				return
			case fileCh <- file:
			}
		}
	}()

	// 等待完成
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]R, 0, len(files))
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}

// quickMatch 第一阶段：快速文本匹配
// 并行读取文件，检查是否包含 @xxx 模式
func (s *Scanner) quickMatch(ctx context.Context, files []string) ([]string, error) {
	type matchResult struct {
		file    string
		matched bool
		err     error
	}

	results := runWorkers(ctx, s.workers, files, func(file string) matchResult {
		matched, err := s.QuickMatchFile(file)
		return matchResult{file: file, matched: matched, err: err}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 收集匹配的文件
	var matchedFiles []string
	for _, r := range results {
		if r.err != nil {
			continue // 跳过错误文件
		}
		if r.matched {
			matchedFiles = append(matchedFiles, r.file)
		}
	}
	slices.Sort(matchedFiles)

	return matchedFiles, nil
}

// QuickMatchFile 快速检查文件是否包含注解或 go:preflect 配置
// 用于 dev 模式判断文件是否需要触发代码生成
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// 只检查注释行
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "/*") {
			continue
		}

		// 检查 go:preflect: 配置（支持 //go:preflect: 和 // go:preflect:）
		if strings.Contains(trimmed, directive) {
			return true, nil
		}

		// 查找 @xxx 模式
		for _, match := range quickMatchRegex.FindAllStringSubmatch(line, -1) {
			if len(s.annotationFilter) == 0 || slices.Contains(s.annotationFilter, match[1]) {
				return true, nil
			}
		}
	}

	return false, scanner.Err()
}

// fileResult 单个文件的解析结果
type fileResult struct {
	structs    []*AnnotatedTarget
	interfaces []*AnnotatedTarget
	types      []*AnnotatedTarget
	funcs      []*AnnotatedTarget
	methods    []*AnnotatedTarget
	pkgConfig  *PackageConfig
	err        error
}

// parseFiles 第二阶段：AST 解析
func (s *Scanner) parseFiles(ctx context.Context, files []string) (*ScanResult, error) {
	results := runWorkers(ctx, s.workers, files, s.parseFile)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 收集结果
	result := &ScanResult{
		PackageConfigs: make(map[string]*PackageConfig),
	}
	for _, r := range results {
		if r.err != nil {
			result.Errors = append(result.Errors, r.err)
			continue
		}
		result.Structs = append(result.Structs, r.structs...)
		result.Interfaces = append(result.Interfaces, r.interfaces...)
		result.Types = append(result.Types, r.types...)
		result.Funcs = append(result.Funcs, r.funcs...)
		result.Methods = append(result.Methods, r.methods...)
		if r.pkgConfig != nil {
			mergePackageConfig(result.PackageConfigs, r.pkgConfig)
		}
	}

	return result, nil
}

// mergePackageConfig 合并同一个包中多个文件的 go:preflect 配置
func mergePackageConfig(configs map[string]*PackageConfig, cfg *PackageConfig) {
	pkgDir := cfg.PackageDir
	existing, ok := configs[pkgDir]
	if !ok {
		configs[pkgDir] = cfg
		return
	}
	// 合并配置：如果新配置有值，覆盖旧配置
	if cfg.DefaultOutput != "" {
		if existing.DefaultOutput != "" && existing.DefaultOutput != cfg.DefaultOutput {
			fmt.Printf("警告: 包 %s 中存在多个不同的 go:preflect 默认输出配置，使用后发现的配置\n", pkgDir)
		}
		existing.DefaultOutput = cfg.DefaultOutput
	}
	for k, v := range cfg.PluginOutputs {
		if existingV, ok := existing.PluginOutputs[k]; ok && existingV != v {
			fmt.Printf("警告: 包 %s 中插件 %s 存在多个不同的输出配置，使用后发现的配置\n", pkgDir, k)
		}
		existing.PluginOutputs[k] = v
	}
}

// parseFile AST 解析单个文件
func (s *Scanner) parseFile(filePath string) (result fileResult) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		result.err = err
		return
	}

	packageName := file.Name.Name

	// 解析包级 go:preflect: 配置
	result.pkgConfig = s.parsePackageConfig(file, filePath)

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok == token.TYPE {
				s.parseTypeDecl(fset, filePath, packageName, d, &result)
			}
		case *ast.FuncDecl:
			s.parseFuncDecl(fset, filePath, packageName, d, &result)
		}
	}

	return
}

// annotationsOf 解析注释中的注解并应用过滤器
func (s *Scanner) annotationsOf(docs ...*ast.CommentGroup) []*Annotation {
	var annotations []*Annotation
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		annotations = append(annotations, ParseAnnotations(doc.Text())...)
	}
	if len(s.annotationFilter) > 0 && len(annotations) > 0 {
		annotations = FilterByNames(annotations, s.annotationFilter...)
	}
	return annotations
}

// parseTypeDecl 解析类型声明
// 单个 type 声明的注解写在 type 关键字上方；分组声明的注解写在每个类型上方
func (s *Scanner) parseTypeDecl(fset *token.FileSet, filePath, packageName string, decl *ast.GenDecl, result *fileResult) {
	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}

		docs := []*ast.CommentGroup{typeSpec.Doc}
		if len(decl.Specs) == 1 || !decl.Lparen.IsValid() {
			docs = append(docs, decl.Doc)
		}
		annotations := s.annotationsOf(docs...)
		if len(annotations) == 0 {
			continue
		}

		target := &Target{
			Name:        typeSpec.Name.Name,
			PackageName: packageName,
			FilePath:    filePath,
			Position:    fset.Position(typeSpec.Pos()),
			Node:        typeSpec,
		}
		annotated := &AnnotatedTarget{
			Target:      target,
			Annotations: annotations,
		}

		switch typeSpec.Type.(type) {
		case *ast.StructType:
			target.Kind = TargetStruct
			result.structs = append(result.structs, annotated)
		case *ast.InterfaceType:
			target.Kind = TargetInterface
			result.interfaces = append(result.interfaces, annotated)
		default:
			target.Kind = TargetType
			result.types = append(result.types, annotated)
		}
	}
}

// parseFuncDecl 解析函数声明
func (s *Scanner) parseFuncDecl(fset *token.FileSet, filePath, packageName string, decl *ast.FuncDecl, result *fileResult) {
	annotations := s.annotationsOf(decl.Doc)
	if len(annotations) == 0 {
		return
	}

	target := &Target{
		Name:        decl.Name.Name,
		PackageName: packageName,
		FilePath:    filePath,
		Position:    fset.Position(decl.Pos()),
		Node:        decl,
	}
	annotated := &AnnotatedTarget{
		Target:      target,
		Annotations: annotations,
	}

	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		target.Kind = TargetMethod
		recv := decl.Recv.List[0]

		if len(recv.Names) > 0 {
			target.ReceiverName = recv.Names[0].Name
		}
		target.ReceiverType = types.ExprString(recv.Type)
		result.methods = append(result.methods, annotated)
	} else {
		target.Kind = TargetFunc
		result.funcs = append(result.funcs, annotated)
	}
}

// collectFiles 收集所有需要扫描的文件
func (s *Scanner) collectFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		if recursive {
			pattern = strings.TrimSuffix(pattern, "/...")
		}

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if strings.HasSuffix(absPath, ".go") && !seen[absPath] {
				seen[absPath] = true
				files = append(files, absPath)
			}
			continue
		}

		err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path == absPath {
					return nil
				}
				name := d.Name()
				if !recursive || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
					name == "vendor" || name == "testdata" {
					return filepath.SkipDir
				}
				return nil
			}

			if strings.HasSuffix(path, ".go") && !IsSkippedFile(path) && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// 默认扫描器
var defaultScanner = NewScanner()

func Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	return defaultScanner.Scan(ctx, patterns...)
}

func ScanWithFilter(ctx context.Context, annotations []string, patterns ...string) (*ScanResult, error) {
	scanner := NewScanner(WithAnnotationFilter(annotations...))
	return scanner.Scan(ctx, patterns...)
}

// directive 包级配置指令
const directive = "go:preflect:"

// directiveRegex 匹配 go:preflect: 指令
// 支持两种格式：//go:preflect: 和 // go:preflect:
var directiveRegex = regexp.MustCompile(`go:preflect:\s*(.*)`)

// parsePackageConfig 解析包级 go:preflect: 配置
// 支持格式:
//
//	//go:preflect: -output `$FILE_fields`
//	// go:preflect: plugin:hasfields -output `$FILE_fields` plugin:partialdrop -output `drop_generated`
func (s *Scanner) parsePackageConfig(file *ast.File, filePath string) *PackageConfig {
	var lines []string

	// 收集所有 go:preflect: 注释
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimPrefix(c.Text, "//")
			text = strings.TrimPrefix(text, "/*")
			text = strings.TrimSuffix(text, "*/")
			text = strings.TrimSpace(text)

			if matches := directiveRegex.FindStringSubmatch(text); len(matches) > 1 {
				lines = append(lines, matches[1])
			}
		}
	}

	if len(lines) == 0 {
		return nil
	}

	// 检查是否有多个 go:preflect: 定义
	if len(lines) > 1 {
		fmt.Printf("警告: 文件 %s 定义了多个 go:preflect: 指令，将被忽略\n", filePath)
		return nil
	}

	return parseDirectiveLine(lines[0], filePath)
}

// parseDirectiveLine 解析单行 go:preflect: 配置
// 格式:
//
//	-output `xxx`                                              // 默认输出
//	plugin:hasfields -output `xxx` plugin:hasfield -output `yyy`  // 插件特定输出
func parseDirectiveLine(line string, filePath string) *PackageConfig {
	config := &PackageConfig{
		PackageDir:    filepath.Dir(filePath),
		PluginOutputs: make(map[string]string),
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	parts := splitDirectiveArgs(line)

	var currentPlugin string
	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "plugin:") {
			// 切换到特定插件
			currentPlugin = strings.ToLower(strings.TrimPrefix(part, "plugin:"))
		} else if part == "-output" && i+1 < len(parts) {
			i++
			output := trimQuotes(parts[i])
			if currentPlugin == "" {
				config.DefaultOutput = output
			} else {
				config.PluginOutputs[currentPlugin] = output
			}
		}
	}

	// 如果没有任何配置，返回 nil
	if config.DefaultOutput == "" && len(config.PluginOutputs) == 0 {
		return nil
	}

	return config
}

// splitDirectiveArgs 分割 go:preflect 参数，支持引号内的空格
func splitDirectiveArgs(line string) []string {
	var parts []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case !inQuote && (c == '`' || c == '"' || c == '\''):
			inQuote = true
			quoteChar = c
			current.WriteByte(c)
		case inQuote && c == quoteChar:
			inQuote = false
			quoteChar = 0
			current.WriteByte(c)
		case !inQuote && c == ' ':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

// trimQuotes 去除引号
func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '`' && s[len(s)-1] == '`') ||
			(s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

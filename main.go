package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/donutnomad/preflect/hasfieldgen"
	"github.com/donutnomad/preflect/hasfieldsgen"
	"github.com/donutnomad/preflect/partialdropgen"
	"github.com/donutnomad/preflect/plugin"
	"github.com/samber/lo"
)

func init() {
	// 集中注册所有生成器
	plugin.MustRegister(hasfieldsgen.NewHasFieldsGenerator())
	plugin.MustRegister(hasfieldgen.NewHasFieldGenerator())
	plugin.MustRegister(partialdropgen.NewPartialDropGenerator())
}

var (
	verbose  = flag.Bool("v", false, "详细输出")
	help     = flag.Bool("h", false, "显示帮助信息")
	output   = flag.String("output", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE），为空时输出到 $FILE_preflect.go")
	noOutput = flag.Bool("no-output", false, "忽略 -output，每个源文件输出到各自的 $FILE_preflect.go")
	async    = flag.Bool("async", true, "异步执行生成器（默认 true）")
	debounce = flag.Duration("debounce", 500*time.Millisecond, "dev 模式下最后一次文件变动后等待多久再生成")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	args := flag.Args()

	// 默认命令是 gen
	if len(args) == 0 {
		runGen([]string{"./..."}, false)
		return
	}

	// 检查是否是子命令
	cmd := args[0]
	switch cmd {
	case "gen":
		runGen(args[1:], false)
	case "check":
		runGen(args[1:], true)
	case "dev":
		runDev(args[1:])
	case "inspect":
		runInspect(args[1:])
	default:
		// 不是子命令，当作路径参数处理，执行 gen
		runGen(args, false)
	}
}

func defaultPatterns(args []string) []string {
	if len(args) == 0 {
		return []string{"./..."}
	}
	return args
}

func outputPath() string {
	if *noOutput {
		return ""
	}
	return *output
}

func mustRegistry() *plugin.Registry {
	registry := plugin.Global()
	if len(registry.Generators()) == 0 {
		fmt.Fprintln(os.Stderr, "错误: 没有已注册的生成器")
		os.Exit(1)
	}
	return registry
}

func runGen(args []string, check bool) {
	patterns := defaultPatterns(args)
	registry := mustRegistry()

	if *verbose {
		fmt.Printf("已注册 %d 个生成器:\n", len(registry.Generators()))
		for _, gen := range registry.Generators() {
			anns := lo.Map(gen.Annotations(), func(item string, index int) string {
				return "@" + item
			})
			fmt.Printf("  - %s (%s)\n", gen.Name(), strings.Join(anns, ","))
		}
		fmt.Println()
	}

	opts := &plugin.RunOptions{
		Registry: registry,
		Patterns: patterns,
		Verbose:  *verbose,
		Output:   outputPath(),
		Async:    *async,
		Check:    check,
	}

	stats, err := plugin.RunWithOptionsAndStats(context.Background(), opts)
	if err != nil {
		if errors.Is(err, plugin.ErrStale) {
			fmt.Fprintln(os.Stderr, "提示: 运行 preflect gen 更新生成文件")
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}

	// 输出统计信息
	if stats != nil && (stats.FileCount > 0 || *verbose) {
		if check {
			fmt.Printf("\n统计: 扫描 %d 个目标, 检查 %d 个文件\n", stats.TargetCount, stats.FileCount)
		} else {
			fmt.Printf("\n统计: 扫描 %d 个目标, 生成 %d 个文件, %d 个文件未变化\n", stats.TargetCount, stats.FileCount, stats.UnchangedCount)
		}
		fmt.Printf("耗时: 扫描 %v, 生成 %v, 总计 %v\n", stats.ScanDuration, stats.GenerateDuration, stats.TotalDuration)
	}
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `preflect - 为 Go 结构体生成字段反射代码

用法:
  preflect [选项] [路径...]
  preflect gen [选项] [路径...]
  preflect check [路径...]
  preflect dev [路径...]
  preflect inspect [路径...]

命令:
  gen      执行代码生成（默认）
  check    检查生成文件是否过期，过期时输出 diff 并以非零状态退出
  dev      启动开发模式，监听文件变动自动生成
  inspect  以 JSON 输出带注解的结构体、字段查找名和 helper 属性

路径:
  支持 Go 包路径模式，如:
    ./...          递归扫描当前目录及子目录（默认）
    ./pkg/...      递归扫描指定目录
    ./models/...   递归扫描 models 目录

选项:
`)
	flag.PrintDefaults()

	// 动态生成注解帮助信息
	registry := plugin.Global()
	if len(registry.Generators()) > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "\n支持的注解:\n")
		_, _ = fmt.Fprint(os.Stderr, plugin.FormatHelpText(registry))
	}

	_, _ = fmt.Fprintf(os.Stderr, `字段属性:
  // @Preflect(ignore)              字段不可通过名称访问
  // @Preflect(alias=[uid, "id"])   额外的查找名
  `+"`preflect:\"alias=uid\"`"+`          也可以写在结构体标签中

模板变量:
  $FILE     - 源文件名（不含 .go 后缀）
  $PACKAGE  - 包名

示例:
  preflect                                  扫描当前目录（默认 ./...）
  preflect -v ./models/...                  详细模式扫描 models 目录
  preflect -output $FILE_fields.go ./...    指定输出文件名
  preflect check ./...                      CI 中检查生成文件
  preflect inspect ./models                 查看字段查找名
  preflect dev ./...                        开发模式，监听文件变动
  preflect -debounce 2s dev ./models/...    变动停止 2 秒后再生成
`)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/donutnomad/preflect/plugin"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/tools/imports"
)

// devOptions dev 命令选项
type devOptions struct {
	Patterns []string
	Verbose  bool
	Output   string
	Async    bool
	Debounce time.Duration // 最后一次变动之后等待多久再生成
}

// devWatcher 监听源文件变动，把一段时间内变动的包合并成一批依次重新生成
type devWatcher struct {
	opts      *devOptions
	fsw       *fsnotify.Watcher
	matcher   *plugin.Scanner
	recursive bool
	out       io.Writer

	// generate 重新生成一个包目录
	generate func(ctx context.Context, dir string) (*plugin.RunStats, error)

	mu    sync.Mutex
	dirty map[string]struct{} // 等待生成的包目录
	timer *time.Timer

	// 同一时间只有一批在生成，避免同一个输出文件被并发写入
	runMu sync.Mutex
}

func newDevWatcher(registry *plugin.Registry, opts *devOptions) *devWatcher {
	w := &devWatcher{
		opts:    opts,
		matcher: plugin.NewScanner(plugin.WithAnnotationFilter(registry.Annotations()...)),
		out:     os.Stdout,
		dirty:   make(map[string]struct{}),
	}
	for _, p := range opts.Patterns {
		if strings.HasSuffix(p, "/...") {
			w.recursive = true
		}
	}
	w.generate = func(ctx context.Context, dir string) (*plugin.RunStats, error) {
		return plugin.RunWithOptionsAndStats(ctx, &plugin.RunOptions{
			Registry: registry,
			Patterns: []string{dir},
			Verbose:  opts.Verbose,
			Output:   opts.Output,
			Async:    opts.Async,
		})
	}
	return w
}

// runDev 启动开发模式，Ctrl+C 退出
func runDev(args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &devOptions{
		Patterns: defaultPatterns(args),
		Verbose:  *verbose,
		Output:   outputPath(),
		Async:    *async,
		Debounce: *debounce,
	}
	if err := dev(ctx, mustRegistry(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func dev(ctx context.Context, registry *plugin.Registry, opts *devOptions) error {
	dirs, err := collectWatchDirs(opts.Patterns)
	if err != nil {
		return fmt.Errorf("收集监听目录失败: %w", err)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("没有找到需要监听的目录")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	defer fsw.Close()

	w := newDevWatcher(registry, opts)
	w.fsw = fsw
	defer w.stop()

	for _, dir := range dirs {
		if err := w.watch(dir); err != nil {
			return err
		}
	}

	w.printf("开发模式已启动，监听 %d 个目录，按 Ctrl+C 退出", len(dirs))
	err = w.loop(ctx)
	w.printf("正在退出...")
	return err
}

func (w *devWatcher) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.printf("监听错误: %v", err)
		}
	}
}

func (w *devWatcher) watch(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
	}
	w.debugf("监听目录: %s", dir)
	return nil
}

func (w *devWatcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.watchNewDir(event.Name)
			return
		}
	}

	dir, ok := w.changedPackage(event)
	if !ok {
		return
	}
	w.debugf("检测到文件变化: %s", event.Name)
	w.markDirty(ctx, dir)
}

// watchNewDir 递归监听时把新建的目录及其子目录加入监听
func (w *devWatcher) watchNewDir(dir string) {
	if !w.recursive || w.fsw == nil || skipWatchDir(filepath.Base(dir)) {
		return
	}
	dirs, err := collectWatchDirs([]string{dir + "/..."})
	if err != nil {
		w.printf("收集监听目录失败: %v", err)
		return
	}
	for _, d := range dirs {
		if err := w.watch(d); err != nil {
			w.printf("%v", err)
		}
	}
}

// changedPackage 判断事件是否需要重新生成，返回源文件所在的包目录
func (w *devWatcher) changedPackage(event fsnotify.Event) (string, bool) {
	path := event.Name
	if filepath.Ext(path) != ".go" || plugin.IsSkippedFile(filepath.Base(path)) {
		return "", false
	}
	dir := filepath.Dir(path)

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// 文件已不存在，无法检查注解，整个包重新生成
		return dir, true
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
	default:
		return "", false
	}

	matched, err := w.matcher.QuickMatchFile(path)
	if err != nil {
		w.debugf("检查注解失败 %s: %v", path, err)
		return "", false
	}
	if !matched {
		w.debugf("跳过文件（无注解）: %s", path)
		return "", false
	}
	// 编辑中的文件经常是半成品，等语法正确后再生成
	if err := checkSyntax(path); err != nil {
		w.printf("语法错误 %s: %v", path, err)
		return "", false
	}
	return dir, true
}

// markDirty 记录变动的包，并从现在起重新计时
func (w *devWatcher) markDirty(ctx context.Context, dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.dirty[dir] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() {
		w.flush(ctx)
	})
}

// flush 按目录顺序重新生成积累的包
func (w *devWatcher) flush(ctx context.Context) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.mu.Lock()
	dirs := plugin.SortedKeys(w.dirty)
	w.dirty = make(map[string]struct{})
	w.mu.Unlock()

	for _, dir := range dirs {
		if ctx.Err() != nil {
			return
		}
		w.debugf("触发代码生成: %s", dir)
		stats, err := w.generate(ctx, dir)
		switch {
		case err != nil:
			w.printf("生成失败 %s: %v", dir, err)
		case stats != nil && stats.FileCount > 0:
			w.printf("生成完成 %s: %d 个文件 (耗时: %v)", dir, stats.FileCount, stats.TotalDuration)
		default:
			w.debugf("生成完成 %s: 无文件变化", dir)
		}
	}
}

func (w *devWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *devWatcher) printf(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

func (w *devWatcher) debugf(format string, args ...any) {
	if w.opts.Verbose {
		w.printf(format, args...)
	}
}

// checkSyntax 只检查语法，不修改 imports
func checkSyntax(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	_, err = imports.Process(filePath, content, &imports.Options{
		Fragment:   true,
		AllErrors:  true,
		Comments:   true,
		FormatOnly: true,
	})
	return err
}

// skipWatchDir 与扫描器递归时跳过的目录一致
func skipWatchDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata"
}

// collectWatchDirs 展开路径模式，返回需要监听的目录
func collectWatchDirs(patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		root, err := filepath.Abs(strings.TrimSuffix(pattern, "/..."))
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			continue
		}
		if !recursive {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skipWatchDir(d.Name()) {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirs, nil
}

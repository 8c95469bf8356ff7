package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/donutnomad/preflect/plugin"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectWatchDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"models", "models/sub", ".git", "_examples", "vendor/x", "testdata"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}

	dirs, err := collectWatchDirs([]string{root + "/..."})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "models"),
		filepath.Join(root, "models", "sub"),
	}, dirs)

	// 非递归只监听目录本身，重复模式去重
	dirs, err = collectWatchDirs([]string{filepath.Join(root, "models"), filepath.Join(root, "models")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "models")}, dirs)

	_, err = collectWatchDirs([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestCheckSyntax(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.go")
	bad := filepath.Join(dir, "bad.go")
	require.NoError(t, os.WriteFile(good, []byte("package model\n\ntype A struct{ B int }\n"), 0644))
	require.NoError(t, os.WriteFile(bad, []byte("package model\n\ntype A struct{ B int\n"), 0644))

	assert.NoError(t, checkSyntax(good))
	assert.Error(t, checkSyntax(bad))
}

func newQuietWatcher(t *testing.T, opts *devOptions) (*devWatcher, *bytes.Buffer) {
	t.Helper()
	w := newDevWatcher(newTestRegistry(), opts)
	out := &bytes.Buffer{}
	w.out = out
	t.Cleanup(w.stop)
	return w, out
}

func TestDevWatcher_ChangedPackage(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"model.go":          "package model\n\n// @HasFields\ntype User struct{ ID int }\n",
		"plain.go":          "package model\n\ntype Plain struct{}\n",
		"other.go":          "package model\n\n// @Deprecated\ntype Old struct{}\n",
		"broken.go":         "package model\n\n// @PartialDrop\ntype Conn struct{\n",
		"model_preflect.go": "package model\n\n// @HasFields\ntype X struct{}\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	w, out := newQuietWatcher(t, &devOptions{Patterns: []string{dir}, Debounce: time.Hour})

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"带注解的文件写入", fsnotify.Event{Name: filepath.Join(dir, "model.go"), Op: fsnotify.Write}, true},
		{"带注解的文件创建", fsnotify.Event{Name: filepath.Join(dir, "model.go"), Op: fsnotify.Create}, true},
		{"没有注解", fsnotify.Event{Name: filepath.Join(dir, "plain.go"), Op: fsnotify.Write}, false},
		{"只有未注册的注解", fsnotify.Event{Name: filepath.Join(dir, "other.go"), Op: fsnotify.Write}, false},
		{"语法错误", fsnotify.Event{Name: filepath.Join(dir, "broken.go"), Op: fsnotify.Write}, false},
		{"生成文件", fsnotify.Event{Name: filepath.Join(dir, "model_preflect.go"), Op: fsnotify.Write}, false},
		{"非 Go 文件", fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write}, false},
		{"权限变化", fsnotify.Event{Name: filepath.Join(dir, "model.go"), Op: fsnotify.Chmod}, false},
		{"文件删除", fsnotify.Event{Name: filepath.Join(dir, "gone.go"), Op: fsnotify.Remove}, true},
		{"文件重命名", fsnotify.Event{Name: filepath.Join(dir, "moved.go"), Op: fsnotify.Rename}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkgDir, ok := w.changedPackage(tt.event)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, dir, pkgDir)
			}
		})
	}
	assert.Contains(t, out.String(), "语法错误 "+filepath.Join(dir, "broken.go"))
}

func TestDevWatcher_FlushBatchesPackages(t *testing.T) {
	w, out := newQuietWatcher(t, &devOptions{Debounce: time.Hour})

	var got []string
	w.generate = func(ctx context.Context, dir string) (*plugin.RunStats, error) {
		got = append(got, dir)
		if dir == "/src/b" {
			return nil, errors.New("字段类型无效")
		}
		return &plugin.RunStats{FileCount: 1}, nil
	}

	ctx := context.Background()
	w.markDirty(ctx, "/src/b")
	w.markDirty(ctx, "/src/a")
	w.markDirty(ctx, "/src/b")
	w.flush(ctx)

	// 同一个包只生成一次，按目录顺序
	assert.Equal(t, []string{"/src/a", "/src/b"}, got)
	assert.Contains(t, out.String(), "生成完成 /src/a: 1 个文件")
	assert.Contains(t, out.String(), "生成失败 /src/b: 字段类型无效")

	w.flush(ctx)
	assert.Len(t, got, 2)
}

func TestDevWatcher_FlushStopsOnCancel(t *testing.T) {
	w, _ := newQuietWatcher(t, &devOptions{Debounce: time.Hour})

	var got []string
	w.generate = func(ctx context.Context, dir string) (*plugin.RunStats, error) {
		got = append(got, dir)
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.markDirty(ctx, "/src/a")
	cancel()
	w.flush(ctx)
	assert.Empty(t, got)
}

func TestDevWatcher_DebouncedGenerate(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.go")
	require.NoError(t, os.WriteFile(model, []byte("package model\n\n// @PartialDrop\ntype Conn struct{ ID int }\n"), 0644))

	w, _ := newQuietWatcher(t, &devOptions{Patterns: []string{dir}, Debounce: 20 * time.Millisecond})

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 4)
	w.generate = func(ctx context.Context, d string) (*plugin.RunStats, error) {
		mu.Lock()
		got = append(got, d)
		mu.Unlock()
		done <- struct{}{}
		return nil, nil
	}

	w.handle(context.Background(), fsnotify.Event{Name: model, Op: fsnotify.Write})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("等待生成超时")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{dir}, got)
}

func TestDevWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	fsw, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer fsw.Close()

	w, _ := newQuietWatcher(t, &devOptions{Patterns: []string{root + "/..."}, Debounce: time.Hour})
	w.fsw = fsw

	for _, d := range []string{"models/sub", "models/_skip", "testdata"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0755))
	}
	ctx := context.Background()
	w.handle(ctx, fsnotify.Event{Name: filepath.Join(root, "models"), Op: fsnotify.Create})
	w.handle(ctx, fsnotify.Event{Name: filepath.Join(root, "testdata"), Op: fsnotify.Create})

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "models"),
		filepath.Join(root, "models", "sub"),
	}, fsw.WatchList())

	// 非递归模式不追加新目录
	flat, _ := newQuietWatcher(t, &devOptions{Patterns: []string{root}, Debounce: time.Hour})
	flatFsw, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer flatFsw.Close()
	flat.fsw = flatFsw
	flat.handle(ctx, fsnotify.Event{Name: filepath.Join(root, "models"), Op: fsnotify.Create})
	assert.Empty(t, flatFsw.WatchList())
}

package utils

import (
	"fmt"
	"os"

	"golang.org/x/tools/imports"
)

// FormatSource 格式化生成的源代码并整理 imports
// 格式化失败时返回原始内容和错误，方便定位生成的问题代码
func FormatSource(path string, src []byte) ([]byte, error) {
	formatted, err := imports.Process(path, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return src, fmt.Errorf("格式化 %s 失败: %w", path, err)
	}
	return formatted, nil
}

// WriteFormat 格式化后写入文件
func WriteFormat(path string, src []byte) error {
	formatted, err := FormatSource(path, src)
	if err != nil {
		// 仍然写入未格式化的内容，便于排查
		_ = os.WriteFile(path, src, 0644)
		return err
	}
	return os.WriteFile(path, formatted, 0644)
}

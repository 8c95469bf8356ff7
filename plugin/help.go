package plugin

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/mattn/go-runewidth"
)

// helpTemplate 单个生成器的帮助文本模板
const helpTemplate = `
{{- range .Generators }}
  @{{ .Annotation }} - {{ .Name }} ({{ join "/" .Targets }})
    参数:
{{- range .Params }}
      {{ pad .Name $.Width }}  {{ .Description }}
{{- if .Required }} (必填){{ end }}
{{- if .Default }} [默认: {{ .Default }}]{{ end }}
{{- end }}
    示例:
{{- range .Examples }}
      {{ . }}
{{- end }}
{{ end -}}
`

var helpTmpl = template.Must(template.New("help").
	Funcs(sprig.TxtFuncMap()).
	Funcs(template.FuncMap{"pad": runewidth.FillRight}).
	Parse(helpTemplate))

type helpGenerator struct {
	Annotation string
	Name       string
	Targets    []string
	Params     []ParamDef
	Examples   []string
}

// FormatHelpText 为所有注册的生成器生成帮助文本
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}

	var items []helpGenerator
	width := runewidth.StringWidth(OutputParam)
	for _, gen := range generators {
		annotations := gen.Annotations()
		if len(annotations) == 0 {
			continue
		}

		// 获取主注解名
		mainAnnotation := annotations[0]
		item := helpGenerator{
			Annotation: mainAnnotation,
			Name:       gen.Name(),
			Params: []ParamDef{{
				Name:        OutputParam,
				Description: "输出文件路径（支持 $FILE、$PACKAGE 模板变量）",
			}},
			Examples: []string{
				"@" + mainAnnotation,
				fmt.Sprintf("@%s(output=$FILE_fields.go)", mainAnnotation),
			},
		}
		for _, k := range gen.SupportedTargets() {
			item.Targets = append(item.Targets, k.String())
		}

		for i, param := range gen.ParamDefs() {
			item.Params = append(item.Params, param)
			width = max(width, runewidth.StringWidth(param.Name))
			// 只显示前2个参数的示例
			if i < 2 && param.Default != "" {
				item.Examples = append(item.Examples, fmt.Sprintf("@%s(%s=%s)", mainAnnotation, param.Name, param.Default))
			}
		}
		items = append(items, item)
	}

	var sb strings.Builder
	err := helpTmpl.Execute(&sb, map[string]any{
		"Generators": items,
		"Width":      width,
	})
	if err != nil {
		return fmt.Sprintf("  (生成帮助文本失败: %v)\n", err)
	}
	return sb.String()
}

// FormatParamDef 格式化单个参数定义
func FormatParamDef(param ParamDef) string {
	parts := []string{param.Name}

	if param.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "optional")
	}

	if param.Default != "" {
		parts = append(parts, fmt.Sprintf("default=%s", param.Default))
	}

	if param.Description != "" {
		parts = append(parts, param.Description)
	}

	return strings.Join(parts, ", ")
}

package preflectattr

import (
	"fmt"
	"go/token"
	"reflect"
	"strings"

	"github.com/donutnomad/preflect/internal/structparse"
	"github.com/spf13/cast"
)

const (
	// AnnotationName 字段注释中的注解名：// @Preflect(ignore)
	AnnotationName = "Preflect"
	// TagKey 结构体标签的键：`preflect:"alias=uid"`
	TagKey = "preflect"

	marker = "@" + AnnotationName
)

// Kind helper 属性类型
type Kind int

const (
	KindDefault Kind = iota
	KindIgnore
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindIgnore:
		return "ignore"
	case KindAlias:
		return "alias"
	default:
		return "default"
	}
}

// HelperAttr 字段上的 helper 属性
type HelperAttr struct {
	Kind   Kind
	Ignore bool     // 仅 KindIgnore
	Alias  []string // 仅 KindAlias
}

// Ignored 字段是否被排除在字段访问之外
func (a HelperAttr) Ignored() bool {
	return a.Kind == KindIgnore && a.Ignore
}

// Aliases 字段的额外查找名
func (a HelperAttr) Aliases() []string {
	if a.Kind != KindAlias {
		return nil
	}
	return a.Alias
}

func (a HelperAttr) String() string {
	switch a.Kind {
	case KindIgnore:
		return fmt.Sprintf("ignore=%t", a.Ignore)
	case KindAlias:
		return "alias=[" + strings.Join(a.Alias, ", ") + "]"
	default:
		return "default"
	}
}

// occurrence 属性在字段上的一处出现
type occurrence struct {
	pos     token.Position
	rest    string         // 注释中 @Preflect 之后的文本
	restPos token.Position // rest 第一个字符的位置
	tag     string         // 标签的值
	fromTag bool
}

// Parse 解析字段的 helper 属性
// 属性可以写在字段的文档注释、行尾注释或 preflect 标签中，三者合计最多一个
func Parse(field structparse.FieldInfo) (HelperAttr, error) {
	occs := findOccurrences(field)
	switch len(occs) {
	case 0:
		return HelperAttr{}, nil
	case 1:
	default:
		return HelperAttr{}, newError(MultipleAttributes, field.Name, field.Position, "")
	}

	occ := occs[0]
	body := occ.tag
	if !occ.fromTag {
		var err error
		body, err = extractGroup(field.Name, occ)
		if err != nil {
			return HelperAttr{}, err
		}
	}

	attr, err := parseBody(body)
	if err != nil {
		return HelperAttr{}, newError(Malformed, field.Name, occ.pos, "%v", err)
	}
	return attr, nil
}

func findOccurrences(field structparse.FieldInfo) []occurrence {
	var occs []occurrence
	for _, c := range field.Comments() {
		text := strings.TrimSuffix(c.Text, "*/")
		for off := 0; ; {
			i := strings.Index(text[off:], marker)
			if i < 0 {
				break
			}
			i += off
			end := i + len(marker)
			off = end
			// @PreflectX 不是本注解
			if end < len(text) && isWordByte(text[end]) {
				continue
			}
			occs = append(occs, occurrence{
				pos:     offsetPosition(c.Position, text[:i]),
				rest:    text[end:],
				restPos: offsetPosition(c.Position, text[:end]),
			})
		}
	}
	if v, ok := reflect.StructTag(field.Tag).Lookup(TagKey); ok {
		occs = append(occs, occurrence{pos: field.TagPosition, tag: v, fromTag: true})
	}
	return occs
}

// extractGroup 取出 @Preflect(...) 括号内的内容
// 单独的 @Preflect 等价于空属性
func extractGroup(field string, occ occurrence) (string, error) {
	rest := occ.rest
	trimmed := strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(trimmed, "(") {
		if rest == "" || isSpace(rest[0]) {
			return "", nil
		}
		return "", newError(MissingGroup, field, occ.restPos, "")
	}
	start := len(rest) - len(trimmed)

	end, err := matchGroup(trimmed)
	if err != nil {
		return "", newError(Malformed, field, occ.pos, "%v", err)
	}
	after := trimmed[end+1:]
	if after != "" && !isSpace(after[0]) {
		pos := offsetPosition(occ.restPos, rest[:start+end+1])
		return "", newError(ExtraTokens, field, pos, "%q", strings.Fields(after)[0])
	}
	return trimmed[1:end], nil
}

// matchGroup 返回与 s[0] 的左括号匹配的右括号下标
func matchGroup(s string) (int, error) {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case isQuote(c):
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
			if depth == 0 {
				if c != ')' {
					return 0, fmt.Errorf("括号不匹配")
				}
				return i, nil
			}
		}
	}
	if quote != 0 {
		return 0, fmt.Errorf("引号 %c 未闭合", quote)
	}
	return 0, fmt.Errorf("缺少右括号")
}

// parseBody 解析属性内容：逗号分隔的 key 或 key=value，允许末尾逗号
func parseBody(body string) (HelperAttr, error) {
	items, err := splitTopLevel(body)
	if err != nil {
		return HelperAttr{}, err
	}

	var (
		ignore   *bool
		alias    []string
		hasAlias bool
		seen     = make(map[string]bool)
	)
	for i, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			if i == len(items)-1 {
				continue
			}
			return HelperAttr{}, fmt.Errorf("存在空的属性项")
		}

		key, value, hasValue := strings.Cut(item, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if !isIdent(key) {
			return HelperAttr{}, fmt.Errorf("无法识别的内容 %q", item)
		}
		if seen[key] {
			return HelperAttr{}, fmt.Errorf("属性 %s 重复", key)
		}
		seen[key] = true

		switch key {
		case "ignore":
			v := true
			if hasValue {
				if value == "" {
					return HelperAttr{}, fmt.Errorf("ignore 缺少值")
				}
				b, err := cast.ToBoolE(trimQuotes(value))
				if err != nil {
					return HelperAttr{}, fmt.Errorf("ignore 的值 %q 不是布尔值", value)
				}
				v = b
			}
			ignore = &v
		case "alias":
			if !hasValue || value == "" {
				return HelperAttr{}, fmt.Errorf("alias 缺少值")
			}
			list, err := parseAliasList(value)
			if err != nil {
				return HelperAttr{}, err
			}
			alias, hasAlias = list, true
		default:
			return HelperAttr{}, fmt.Errorf("未知的属性 %s，可用属性: ignore, alias", key)
		}
	}

	switch {
	case ignore != nil && hasAlias:
		return HelperAttr{}, fmt.Errorf("ignore 和 alias 不能同时使用")
	case ignore != nil:
		return HelperAttr{Kind: KindIgnore, Ignore: *ignore}, nil
	case hasAlias:
		return HelperAttr{Kind: KindAlias, Alias: alias}, nil
	}
	return HelperAttr{}, nil
}

// parseAliasList 解析 alias 的值：name、"name" 或 [a, "b"]
func parseAliasList(value string) ([]string, error) {
	raw := []string{value}
	if strings.HasPrefix(value, "[") {
		if !strings.HasSuffix(value, "]") {
			return nil, fmt.Errorf("alias 列表缺少 ]")
		}
		items, err := splitTopLevel(value[1 : len(value)-1])
		if err != nil {
			return nil, err
		}
		raw = items
	}

	aliases := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" && i == len(raw)-1 && i > 0 {
			continue
		}
		a := trimQuotes(item)
		if strings.TrimSpace(a) == "" {
			return nil, fmt.Errorf("alias 不能为空")
		}
		if seen[a] {
			return nil, fmt.Errorf("alias %q 重复", a)
		}
		seen[a] = true
		aliases = append(aliases, a)
	}
	return aliases, nil
}

// splitTopLevel 按不在引号和括号内的逗号分割
func splitTopLevel(s string) ([]string, error) {
	var (
		parts []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case isQuote(c):
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("多余的 %c", c)
			}
		case c == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("引号 %c 未闭合", quote)
	}
	if depth != 0 {
		return nil, fmt.Errorf("括号不匹配")
	}
	return append(parts, s[start:]), nil
}

// offsetPosition 计算 pos 之后 prefix 结束处的位置
func offsetPosition(pos token.Position, prefix string) token.Position {
	pos.Offset += len(prefix)
	if n := strings.LastIndexByte(prefix, '\n'); n >= 0 {
		pos.Line += strings.Count(prefix, "\n")
		pos.Column = len(prefix) - n
		return pos
	}
	pos.Column += len(prefix)
	return pos
}

func trimQuotes(s string) string {
	if len(s) >= 2 && isQuote(s[0]) && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func isQuote(c byte) bool {
	return c == '"' || c == '\'' || c == '`'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

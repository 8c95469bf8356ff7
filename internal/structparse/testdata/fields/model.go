package fields

import (
	"io"
	"sync"

	yaml "gopkg.in/yaml.v3"
	"github.com/mattn/go-runewidth"
)

type Base struct {
	CreatedAt int64
}

// Account 用于测试字段注释、标签和嵌入字段
type Account struct {
	Base
	*sync.Mutex

	// 用户 ID
	// @Preflect(alias=uid)
	ID int64 `json:"id"`

	First, Last string // @Preflect(ignore)

	Node    yaml.Node
	Width   map[string]runewidth.Condition
	Closers []io.Closer `preflect:"alias=[c, closers]"`
	_       struct{}
}

func (a *Account) FieldNames() []string { return nil }

type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

func (p Pair[K, V]) String() string { return "" }

type Status int

// Config 匿名结构体字段的标签属于字段类型
type Config struct {
	DB   struct{ Host string `json:"host"` }
	Opts struct{ Retry int }
}

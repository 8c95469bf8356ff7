package hasfieldsgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/donutnomad/preflect/internal/preflectattr"
	"github.com/donutnomad/preflect/plugin"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.go"), []byte(src), 0644))

	registry := plugin.NewRegistry()
	registry.MustRegister(NewHasFieldsGenerator())
	err := plugin.Run(context.Background(), registry, dir)

	data, readErr := os.ReadFile(filepath.Join(dir, "model_preflect.go"))
	if readErr != nil {
		return "", err
	}
	return string(data), err
}

func errorText(err *plugin.RunError) string {
	return strings.Join(lo.Map(err.Errors, func(e error, _ int) string {
		return e.Error()
	}), "\n")
}

func TestNewHasFieldsGenerator(t *testing.T) {
	g := NewHasFieldsGenerator()
	assert.Equal(t, "hasfields", g.Name())
	assert.Equal(t, []string{"HasFields"}, g.Annotations())
	assert.Equal(t, []plugin.TargetKind{plugin.TargetStruct}, g.SupportedTargets())
	require.Len(t, g.ParamDefs(), 1)
	assert.Equal(t, "naming", g.ParamDefs()[0].Name)
	assert.Equal(t, "go", g.ParamDefs()[0].Default)
}

func TestGenerate(t *testing.T) {
	output, err := run(t, `package model

import "io"

// @HasFields
type User struct {
	ID     uint32 // @Preflect(alias=uid)
	Name   string
	secret string `+"`preflect:\"ignore\"`"+`
	Closer io.Closer
	_      int
}
`)
	require.NoError(t, err)

	assert.Contains(t, output, "package model")
	assert.Contains(t, output, `"github.com/donutnomad/preflect/fields"`)
	assert.Contains(t, output, "var _ fields.HasFields = (*User)(nil)")
	assert.Contains(t, output, "func (u *User) GetFieldRaw(name string) (any, error) {")
	assert.Contains(t, output, "func (u *User) GetFieldMutRaw(name string) (any, error) {")
	assert.Contains(t, output, `case "ID", "uid":`)
	assert.Contains(t, output, "return u.ID, nil")
	assert.Contains(t, output, "return &u.ID, nil")
	assert.Contains(t, output, "return &u.Closer, nil")
	assert.Contains(t, output, "return nil, fields.NewMissingField(name)")
	assert.Contains(t, output, `return []string{"ID", "Name", "Closer"}`)
	assert.NotContains(t, output, "secret")
	// 字段类型不需要导入
	assert.NotContains(t, output, `"io"`)
}

func TestGenerate_Naming(t *testing.T) {
	output, err := run(t, `package model

// @HasFields(naming=snake)
type Order struct {
	OrderID   int64
	UserName  string // @Preflect(alias=[buyer, "customer"])
}
`)
	require.NoError(t, err)
	assert.Contains(t, output, `case "order_id":`)
	assert.Contains(t, output, `case "user_name", "buyer", "customer":`)
	assert.Contains(t, output, `return []string{"order_id", "user_name"}`)
}

func TestGenerate_ReceiverAndGeneric(t *testing.T) {
	output, err := run(t, `package model

// @HasFields
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

func (self *Pair[K, V]) String() string { return "" }

// @HasFields
type Zero struct{}
`)
	require.NoError(t, err)
	assert.Contains(t, output, "func (self *Pair[K, V]) GetFieldRaw(name string) (any, error) {")
	assert.NotContains(t, output, "(*Pair[K, V])(nil)")

	// 没有字段时不生成 switch
	idx := strings.Index(output, "func (z *Zero) GetFieldRaw")
	require.Greater(t, idx, 0)
	assert.NotContains(t, output[idx:], "switch")
	assert.Contains(t, output[idx:], "return nil\n")
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
		msg  string
	}{
		{
			name: "查找名重复",
			src: `package model

// @HasFields
type User struct {
	ID  int
	UID int // @Preflect(alias=ID)
}
`,
			want: preflectattr.ErrDuplicateKey,
			msg:  `"ID" 已被字段 ID 使用`,
		},
		{
			name: "方法冲突",
			src: `package model

// @HasFields
type User struct {
	ID int
}

func (u User) FieldNames() []string { return nil }
`,
			want: preflectattr.ErrNameConflict,
			msg:  "方法 FieldNames 已在",
		},
		{
			name: "属性错误",
			src: `package model

// @HasFields
type User struct {
	ID int // @Preflect(ignore) @Preflect(alias=x)
}
`,
			want: preflectattr.ErrMultipleAttributes,
			msg:  "model.go:5:2: 字段 ID",
		},
		{
			name: "导入名被包级函数占用",
			src: `package model

// @HasFields
type User struct {
	ID int
}

func fields() {}
`,
			want: preflectattr.ErrNameConflict,
			msg:  "包级标识符 fields 已在",
		},
		{
			name: "naming 无效",
			src: `package model

// @HasFields(naming=kebab)
type User struct {
	ID int
}
`,
			msg: `naming="kebab" 无效`,
		},
		{
			name: "非结构体",
			src: `package model

// @HasFields
type Status int
`,
			msg: "@HasFields 只能用于 struct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.src)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}

			var runErr *plugin.RunError
			require.True(t, errors.As(err, &runErr))
			assert.Contains(t, errorText(runErr), tt.msg)
		})
	}
}

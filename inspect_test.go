package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/donutnomad/preflect/hasfieldgen"
	"github.com/donutnomad/preflect/hasfieldsgen"
	"github.com/donutnomad/preflect/partialdropgen"
	"github.com/donutnomad/preflect/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *plugin.Registry {
	registry := plugin.NewRegistry()
	registry.MustRegister(hasfieldsgen.NewHasFieldsGenerator())
	registry.MustRegister(hasfieldgen.NewHasFieldGenerator())
	registry.MustRegister(partialdropgen.NewPartialDropGenerator())
	return registry
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.go"), []byte(`package model

// @HasFields(naming=snake)
// @PartialDrop
type User struct {
	UserID int    // @Preflect(alias=[uid, "id"])
	Secret string `+"`preflect:\"ignore\"`"+`
	_      int
}

type Plain struct {
	A int
}
`), 0644))

	report, err := inspect(context.Background(), newTestRegistry(), []string{dir})
	require.NoError(t, err)
	assert.Empty(t, report.Errors)
	require.Len(t, report.Structs, 1)

	s := report.Structs[0]
	assert.Equal(t, "User", s.Name)
	assert.Equal(t, "model", s.Package)
	require.Len(t, s.Annotations, 2)
	assert.Equal(t, "HasFields", s.Annotations[0].Name)
	assert.Equal(t, "snake", s.Annotations[0].Params["naming"])

	// 空白字段不出现
	require.Len(t, s.Fields, 2)
	id := s.Fields[0]
	assert.Equal(t, "UserID", id.Name)
	assert.Equal(t, "int", id.Type)
	assert.Equal(t, "alias=[uid, id]", id.Attr)
	assert.False(t, id.Ignored)
	assert.Equal(t, []string{"user_id", "uid", "id"}, id.Keys["HasFields"])
	assert.Equal(t, []string{"UserID", "uid", "id"}, id.Keys["PartialDrop"])

	secret := s.Fields[1]
	assert.True(t, secret.Ignored)
	assert.Equal(t, "ignore=true", secret.Attr)
	// 被忽略的字段只保留 @PartialDrop 的查找名
	assert.Equal(t, map[string][]string{"PartialDrop": {"Secret"}}, secret.Keys)

	data, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "User"`)
	assert.Contains(t, string(data), `"user_id"`)
}

func TestInspect_AttrErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.go"), []byte(`package model

// @HasField(naming=kebab)
type Order struct {
	A int // @Preflect(ignore, alias=x)
	B int
}
`), 0644))

	report, err := inspect(context.Background(), newTestRegistry(), []string{dir})
	require.NoError(t, err)
	require.Len(t, report.Structs, 1)
	// 出错的字段不出现在结果中
	require.Len(t, report.Structs[0].Fields, 1)
	assert.Equal(t, "B", report.Structs[0].Fields[0].Name)
	assert.Empty(t, report.Structs[0].Fields[0].Keys)

	require.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "字段 A")
	assert.Contains(t, report.Errors[1], `naming="kebab" 无效`)
}

package example

import (
	"errors"
	"testing"

	"github.com/donutnomad/preflect/drop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conn struct {
	closed bool
	err    error
}

func (c *conn) Close() error {
	c.closed = true
	return c.err
}

func newSession(c *conn, pool *[][]byte) *Session {
	return &Session{
		ID:      "s-1",
		Conn:    c,
		Buf:     Buffer{data: make([]byte, 8), pool: pool},
		Scratch: []byte{1, 2, 3},
	}
}

func TestSession_DropAllFieldsExcept(t *testing.T) {
	var pool [][]byte
	c := &conn{}
	s := newSession(c, &pool)

	require.NoError(t, s.DropAllFieldsExcept("ID"))

	assert.Equal(t, "s-1", s.ID)
	assert.True(t, c.closed)
	assert.Nil(t, s.Conn)
	assert.Len(t, pool, 1)
	assert.Equal(t, Buffer{}, s.Buf)
	// ignore 的字段同样被释放
	assert.Nil(t, s.Scratch)
}

func TestSession_KeepByAlias(t *testing.T) {
	c := &conn{}
	s := newSession(c, nil)

	require.NoError(t, s.DropAllFieldsExcept("conn", "Scratch", "unknown"))

	assert.False(t, c.closed)
	assert.Same(t, c, s.Conn.(*conn))
	assert.Equal(t, []byte{1, 2, 3}, s.Scratch)
	assert.Empty(t, s.ID)
}

func TestSession_CloseError(t *testing.T) {
	closeErr := errors.New("close failed")
	s := newSession(&conn{err: closeErr}, nil)

	var pd drop.PartialDrop = s
	err := pd.DropAllFieldsExcept()
	assert.ErrorIs(t, err, closeErr)
	// 出错的字段也会被清零
	assert.Nil(t, s.Conn)
	assert.Empty(t, s.ID)
}

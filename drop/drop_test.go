package drop

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

type logDrop struct {
	log   *[]string
	label string
}

func (l *logDrop) Drop() {
	*l.log = append(*l.log, l.label)
}

type closer struct {
	closed bool
	err    error
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestField_Dropper(t *testing.T) {
	var log []string

	v := logDrop{log: &log, label: "value"}
	assert.NoError(t, Field(&v))
	assert.Equal(t, []string{"value"}, log)
	assert.Nil(t, v.log, "字段应被清零")

	p := &logDrop{log: &log, label: "pointer"}
	assert.NoError(t, Field(&p))
	assert.Equal(t, []string{"value", "pointer"}, log)
	assert.Nil(t, p)

	var nilPtr *logDrop
	assert.NoError(t, Field(&nilPtr))
	assert.Len(t, log, 2)
}

func TestField_Closer(t *testing.T) {
	c := &closer{err: errors.New("boom")}
	keep := c

	err := Field(&c)
	assert.EqualError(t, err, "boom")
	assert.True(t, keep.closed)
	assert.Nil(t, c)

	var rc io.Closer = &closer{}
	assert.NoError(t, Field(&rc))
	assert.Nil(t, rc)

	var nilCloser io.Closer
	assert.NoError(t, Field(&nilCloser))
}

func TestField_Plain(t *testing.T) {
	s := []int{1, 2, 3}
	assert.NoError(t, Field(&s))
	assert.Nil(t, s)

	n := 42
	assert.NoError(t, Field(&n))
	assert.Zero(t, n)
}

func TestNeedsDrop(t *testing.T) {
	assert.True(t, NeedsDrop[logDrop]())
	assert.True(t, NeedsDrop[*logDrop]())
	assert.True(t, NeedsDrop[*closer]())
	assert.True(t, NeedsDrop[io.Closer]())
	assert.False(t, NeedsDrop[int]())
	assert.False(t, NeedsDrop[[]string]())
}

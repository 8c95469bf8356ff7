package example

import "io"

// Buffer 释放时归还到缓冲池
type Buffer struct {
	data []byte
	pool *[][]byte
}

func (b *Buffer) Drop() {
	if b.pool != nil {
		*b.pool = append(*b.pool, b.data[:0])
	}
}

// @PartialDrop
type Session struct {
	ID      string
	Conn    io.Closer // @Preflect(alias=conn)
	Buf     Buffer
	Scratch []byte `preflect:"ignore"`
}

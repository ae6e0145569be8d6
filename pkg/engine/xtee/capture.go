package xtee

import (
	"bytes"
	"io"

	"github.com/omeyang/xserve/pkg/engine/xreq"
)

// Capture 写穿式的输出复制器。非并发安全，属于单个请求。
type Capture struct {
	w        io.Writer
	buf      bytes.Buffer
	limit    int
	overflow bool
}

// NewCapture 创建写向 w 并最多缓冲 limit 字节的复制器。limit <= 0 表示不缓冲。
func NewCapture(w io.Writer, limit int) *Capture {
	if w == nil {
		w = io.Discard
	}
	return &Capture{w: w, limit: limit, overflow: limit <= 0}
}

// Write 先写调用方，再写缓冲。缓冲只记录调用方已接受的字节。
func (c *Capture) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if !c.overflow && n > 0 {
		if c.buf.Len()+n > c.limit {
			c.overflow = true
			c.buf = bytes.Buffer{}
		} else {
			c.buf.Write(p[:n])
		}
	}
	return n, err
}

// Flush 刷新调用方的输出。
func (c *Capture) Flush() error {
	if f, ok := c.w.(xreq.Flusher); ok {
		return f.Flush()
	}
	return nil
}

// Bytes 返回已捕获的字节。溢出后返回 nil。
func (c *Capture) Bytes() []byte {
	if c.overflow {
		return nil
	}
	return c.buf.Bytes()
}

// Overflowed 报告捕获是否因超过上限而放弃。
func (c *Capture) Overflowed() bool { return c.overflow }

// Discard 丢弃捕获，后续写入只到达调用方。
func (c *Capture) Discard() {
	c.overflow = true
	c.buf = bytes.Buffer{}
}

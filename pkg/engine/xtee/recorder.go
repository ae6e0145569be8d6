package xtee

import (
	"bytes"
	"io"
)

// Recorder 记录经过它读取的请求输入，最多 limit 字节。
type Recorder struct {
	r         io.Reader
	buf       bytes.Buffer
	limit     int
	truncated bool
}

// NewRecorder 创建记录器。
func NewRecorder(r io.Reader, limit int) *Recorder {
	return &Recorder{r: r, limit: limit}
}

// Read 实现 io.Reader。
func (rec *Recorder) Read(p []byte) (int, error) {
	n, err := rec.r.Read(p)
	if n > 0 {
		keep := min(n, rec.limit-rec.buf.Len())
		if keep > 0 {
			rec.buf.Write(p[:keep])
		}
		if keep < n {
			rec.truncated = true
		}
	}
	return n, err
}

// Drain 读完剩余输入，记录到上限为止，超出部分只读不存。
func (rec *Recorder) Drain() error {
	_, err := io.Copy(io.Discard, rec)
	return err
}

// Bytes 返回已记录的输入。
func (rec *Recorder) Bytes() []byte { return rec.buf.Bytes() }

// Truncated 报告输入是否超过上限。
func (rec *Recorder) Truncated() bool { return rec.truncated }

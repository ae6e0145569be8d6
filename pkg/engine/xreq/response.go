package xreq

import (
	"bytes"
	"io"
	"net/textproto"
	"strconv"
	"strings"
)

// StatusOK 默认响应状态。
const StatusOK = 200

// Response 响应元数据与输出流。
//
// 响应头在第一次写入或 Flush 时物化；物化之后修改状态与头部不再生效。
// 非并发安全，只由持有 RequestContext 的 worker 使用。
type Response struct {
	w           io.Writer
	status      int
	header      []Pair
	headWritten bool
	broken      bool
	bodyBytes   int64
}

// NewResponse 创建写向 w 的响应。
func NewResponse(w io.Writer) *Response {
	if w == nil {
		w = io.Discard
	}
	return &Response{w: w, status: StatusOK}
}

// Status 返回当前状态码。
func (r *Response) Status() int { return r.status }

// SetStatus 设置状态码。响应头已写出时返回 false。
func (r *Response) SetStatus(code int) bool {
	if r.headWritten {
		return false
	}
	r.status = code
	return true
}

// SetHeader 设置响应头，同名头被替换。键和值中的 CR、LF 被去掉。
// 响应头已写出或去掉后键为空时返回 false。
func (r *Response) SetHeader(key, value string) bool {
	if r.headWritten {
		return false
	}
	key = textproto.CanonicalMIMEHeaderKey(stripNewlines(key))
	value = stripNewlines(value)
	if key == "" {
		return false
	}
	for i := range r.header {
		if r.header[i].Key == key {
			r.header[i].Value = value
			return true
		}
	}
	r.header = append(r.header, Pair{Key: key, Value: value})
	return true
}

// Header 返回响应头的副本。
func (r *Response) Header() []Pair {
	out := make([]Pair, len(r.header))
	copy(out, r.header)
	return out
}

// HeadWritten 报告响应头是否已物化。
func (r *Response) HeadWritten() bool { return r.headWritten }

// Broken 报告输出是否已被标记为损坏。
func (r *Response) Broken() bool { return r.broken }

// MarkBroken 标记输出损坏，之后的写入返回 ErrOutputBroken。
func (r *Response) MarkBroken() { r.broken = true }

// BodyBytes 返回已写出的响应体字节数（不含响应头）。
func (r *Response) BodyBytes() int64 { return r.bodyBytes }

// Write 写出响应体，必要时先物化响应头。
func (r *Response) Write(p []byte) (int, error) {
	if r.broken {
		return 0, ErrOutputBroken
	}
	if err := r.writeHead(); err != nil {
		return 0, err
	}
	n, err := r.w.Write(p)
	r.bodyBytes += int64(n)
	return n, err
}

// WriteString 写出字符串响应体。
func (r *Response) WriteString(s string) (int, error) {
	return r.Write([]byte(s))
}

// Flush 物化响应头并刷新底层输出。损坏的输出只尝试刷新底层。
func (r *Response) Flush() error {
	if !r.broken {
		if err := r.writeHead(); err != nil {
			return err
		}
	}
	if f, ok := r.w.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

func (r *Response) writeHead() error {
	if r.headWritten {
		return nil
	}
	r.headWritten = true
	_, err := r.w.Write(EncodeHead(r.status, r.header))
	return err
}

// EncodeHead 编码响应头。
func EncodeHead(status int, header []Pair) []byte {
	var buf bytes.Buffer
	buf.WriteString("Status: ")
	buf.WriteString(strconv.Itoa(status))
	buf.WriteString("\r\n")
	for _, h := range header {
		buf.WriteString(stripNewlines(h.Key))
		buf.WriteString(": ")
		buf.WriteString(stripNewlines(h.Value))
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// stripNewlines 去掉 CR 与 LF，防止头部值拆出额外的行。
func stripNewlines(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Map(func(c rune) rune {
		if c == '\r' || c == '\n' {
			return -1
		}
		return c
	}, s)
}

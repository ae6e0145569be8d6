package xreq

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// DefaultMaxHeaderBytes 请求头默认上限（1MB）。
const DefaultMaxHeaderBytes = 1 << 20

// ReadRequest 从 r 读取一个请求。
//
// 返回的 body 被限制在 CONTENT_LENGTH 之内；未给出 CONTENT_LENGTH 时读到 EOF。
// 头部解析只做分帧，不做键校验，键校验在流水线的环境捕获阶段完成。
func ReadRequest(r *bufio.Reader, maxHeaderBytes int) ([]Pair, io.Reader, error) {
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = DefaultMaxHeaderBytes
	}

	var (
		meta  []Pair
		total int
		clen  = int64(-1)
	)
	for {
		line, err := readLine(r, maxHeaderBytes-total)
		if errors.Is(err, ErrHeaderTooLarge) {
			return nil, nil, err
		}
		total += len(line)
		if err != nil {
			if err == io.EOF && line == "" && len(meta) == 0 {
				return nil, nil, io.EOF
			}
			if err == io.EOF {
				return nil, nil, io.ErrUnexpectedEOF
			}
			return nil, nil, err
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		meta = append(meta, Pair{Key: key, Value: value})
		if CanonicalKey(key) == KeyContentLength {
			if n, perr := strconv.ParseInt(value, 10, 64); perr == nil && n >= 0 {
				clen = n
			}
		}
	}

	if clen >= 0 {
		return meta, io.LimitReader(r, clen), nil
	}
	return meta, r, nil
}

// readLine 读取一行（含换行符），行长超过 limit 时在缓冲区粒度内停止读取。
func readLine(r *bufio.Reader, limit int) (string, error) {
	var line []byte
	for {
		frag, err := r.ReadSlice('\n')
		if len(line)+len(frag) > limit {
			return "", ErrHeaderTooLarge
		}
		line = append(line, frag...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return string(line), err
	}
}

// WriteRequest 按线路格式写出一个请求。
//
// body 非 nil 且 meta 中没有 CONTENT_LENGTH 时，会自动补上。
func WriteRequest(w io.Writer, meta []Pair, body []byte) error {
	var buf bytes.Buffer
	hasLength := false
	for _, p := range meta {
		if CanonicalKey(p.Key) == KeyContentLength {
			hasLength = true
		}
		buf.WriteString(p.Key)
		buf.WriteByte('=')
		buf.WriteString(p.Value)
		buf.WriteByte('\n')
	}
	if !hasLength {
		buf.WriteString(KeyContentLength)
		buf.WriteByte('=')
		buf.WriteString(strconv.Itoa(len(body)))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(body)
	_, err := w.Write(buf.Bytes())
	return err
}

// PairsFromEnv 将环境转换为按键排序的元数据。
func PairsFromEnv(env Env) []Pair {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Pair, 0, len(keys))
	for _, k := range keys {
		out = append(out, Pair{Key: k, Value: env[k]})
	}
	return out
}

// ParsedResponse 客户端解析得到的响应。
type ParsedResponse struct {
	Status int
	Header []Pair
	Body   []byte
}

// ReadResponse 读取并解析完整响应。
func ReadResponse(r io.Reader) (*ParsedResponse, error) {
	br := bufio.NewReader(r)
	resp := &ParsedResponse{Status: 200}
	sawStatus := false
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedResponse, line)
		}
		value = strings.TrimSpace(value)
		if !sawStatus && strings.EqualFold(key, "Status") {
			code, perr := strconv.Atoi(value)
			if perr != nil {
				return nil, fmt.Errorf("%w: status %q", ErrMalformedResponse, value)
			}
			resp.Status = code
			sawStatus = true
			continue
		}
		resp.Header = append(resp.Header, Pair{Key: key, Value: value})
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return nil, err
	}
	resp.Body = body
	return resp, nil
}

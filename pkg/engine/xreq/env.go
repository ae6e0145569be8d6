package xreq

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// 保留的环境键。
const (
	// KeyContentLength 请求体长度。
	KeyContentLength = "CONTENT_LENGTH"

	// KeyScriptName 业务路由名。
	KeyScriptName = "SCRIPT_NAME"

	// KeyControl 控制指令（exit/help/version/admin）。
	KeyControl = "XSERVE_CONTROL"

	// KeyCorrelationID 调用方指定的关联 ID。
	KeyCorrelationID = "XSERVE_CORRELATION_ID"

	// KeyRemoteAddr 由分发器填入的对端地址。
	KeyRemoteAddr = "REMOTE_ADDR"
)

// Pair 传输层元数据中的一项，保持原始顺序。
type Pair struct {
	Key   string
	Value string
}

// Env 规范化后的请求环境。
type Env map[string]string

// Get 返回键对应的值，键会先规范化。
func (e Env) Get(key string) string {
	return e[CanonicalKey(key)]
}

// Lookup 返回键对应的值及是否存在。
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e[CanonicalKey(key)]
	return v, ok
}

// Keys 返回排序后的键列表。
func (e Env) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone 返回副本。
func (e Env) Clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// ContentLength 解析 CONTENT_LENGTH。缺省时返回 -1。
func (e Env) ContentLength() (int64, error) {
	s, ok := e[KeyContentLength]
	if !ok || s == "" {
		return -1, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidContentLength, s)
	}
	return n, nil
}

// CanonicalKey 规范化环境键：去除首尾空白、转大写、'-' 替换为 '_'。
func CanonicalKey(key string) string {
	key = strings.TrimSpace(key)
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// validKey 报告规范化后的键是否合法。
func validKey(key string) bool {
	if key == "" {
		return false
	}
	return !strings.ContainsAny(key, "= \t\x00\r\n")
}

// Capture 将传输层元数据转换为规范化环境。
//
// 后出现的同名键覆盖先出现的。任何非法键都会使整个请求失败。
func Capture(meta []Pair) (Env, error) {
	env := make(Env, len(meta))
	for _, p := range meta {
		key := CanonicalKey(p.Key)
		if !validKey(key) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEnvKey, p.Key)
		}
		env[key] = p.Value
	}
	if _, err := env.ContentLength(); err != nil {
		return nil, err
	}
	return env, nil
}

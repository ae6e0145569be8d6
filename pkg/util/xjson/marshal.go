package xjson

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// ErrMarshal 序列化失败。
var ErrMarshal = errors.New("xjson: marshal failed")

// PrettyE 将 v 序列化为格式化的 JSON 字符串。
func PrettyE(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	return string(data), nil
}

// Pretty 与 PrettyE 相同，失败时返回 "<marshal error: ...>"。
func Pretty(v any) string {
	s, err := PrettyE(v)
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	return s
}

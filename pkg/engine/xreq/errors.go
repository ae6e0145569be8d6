package xreq

import "errors"

var (
	// ErrInvalidEnvKey 表示环境键为空或包含非法字符。
	ErrInvalidEnvKey = errors.New("xreq: invalid env key")

	// ErrInvalidContentLength 表示 CONTENT_LENGTH 不是非负整数。
	ErrInvalidContentLength = errors.New("xreq: invalid CONTENT_LENGTH")

	// ErrMalformedHeader 表示请求头行缺少 '='。
	ErrMalformedHeader = errors.New("xreq: malformed header line")

	// ErrHeaderTooLarge 表示请求头超过上限。
	ErrHeaderTooLarge = errors.New("xreq: header block too large")

	// ErrMalformedResponse 表示响应头无法解析。
	ErrMalformedResponse = errors.New("xreq: malformed response head")

	// ErrOutputBroken 表示输出流已被标记为损坏，后续写入被拒绝。
	ErrOutputBroken = errors.New("xreq: output broken")

	// ErrNilRequest 表示传入了 nil 请求。
	ErrNilRequest = errors.New("xreq: nil request")
)

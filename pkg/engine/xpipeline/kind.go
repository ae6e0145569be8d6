package xpipeline

import "errors"

// Kind 失败类别。
type Kind int

const (
	// KindNone 没有错误。
	KindNone Kind = iota
	// KindEnv 传输层或环境解析错误。
	KindEnv
	// KindStatusOK 成功区间的状态码错误。
	KindStatusOK
	// KindStatus 其他状态码错误。
	KindStatus
	// KindGeneric 未分类的错误，包括 panic。
	KindGeneric
	// KindConfig 启动期配置错误。
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindEnv:
		return "environment"
	case KindStatusOK:
		return "status_ok"
	case KindStatus:
		return "status"
	case KindConfig:
		return "config"
	default:
		return "generic"
	}
}

// Classify 将错误映射为失败类别。
//
// 错误链中最外层的 *StatusError 决定状态类别；ErrEnvironment 与 ErrConfig 通过 errors.Is 识别。
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrConfig) {
		return KindConfig
	}
	if errors.Is(err, ErrEnvironment) {
		return KindEnv
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.SuccessRange() {
			return KindStatusOK
		}
		return KindStatus
	}
	return KindGeneric
}

// StatusCode 返回错误链中的状态码，没有时返回 0。
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

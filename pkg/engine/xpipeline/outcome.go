package xpipeline

// Outcome 单个请求的处理结果。
type Outcome int

const (
	// Success 请求成功，包括缓存命中与控制请求。
	Success Outcome = iota
	// HandledExitRequest 请求是被接受的退出请求。
	HandledExitRequest
	// RecoverableFailure 请求失败，进程继续服务。
	RecoverableFailure
	// FatalFailure 处理器通用错误，可能触发进程退出。
	FatalFailure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case HandledExitRequest:
		return "exit_request"
	case RecoverableFailure:
		return "recoverable_failure"
	case FatalFailure:
		return "fatal_failure"
	default:
		return "unknown"
	}
}

// Failed 报告结果是否计为错误。
func (o Outcome) Failed() bool {
	return o == RecoverableFailure || o == FatalFailure
}

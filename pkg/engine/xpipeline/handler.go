package xpipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"

	"github.com/omeyang/xserve/pkg/engine/xreq"
)

// Result 处理器正常返回时的结果。
type Result struct {
	// Status 响应状态码，0 表示保持当前状态。
	// 只在响应头写出之前生效；先写响应体的处理器应先调用 rc.Response().SetStatus。
	Status int
	// Ready 为 false 表示结果延后完成，请求快照会被保存以便之后关联
	Ready bool
}

// Done 返回已就绪的结果。
func Done(status int) Result { return Result{Status: status, Ready: true} }

// Deferred 返回延后完成的结果。
func Deferred(status int) Result { return Result{Status: status} }

// Handler 业务处理器。
//
// Execute 可以直接写 rc.Output()，可以通过 rc.OnFailure 注册异常回调。
// 返回 *StatusError 表示带状态码的失败，返回其他错误或 panic 表示通用失败。
type Handler interface {
	Execute(rc *xreq.RequestContext) (Result, error)
}

// HandlerFunc 将函数适配为 Handler。
type HandlerFunc func(rc *xreq.RequestContext) (Result, error)

// Execute 实现 Handler。
func (f HandlerFunc) Execute(rc *xreq.RequestContext) (Result, error) { return f(rc) }

// Fingerprint 由请求环境计算缓存键。ok 为 false 表示请求不可缓存。
// 必须是确定性的纯函数。
type Fingerprint func(env xreq.Env) (key string, ok bool)

// EnvFingerprint 返回以 SCRIPT_NAME 与 keys 对应环境值计算 SHA-256 的指纹函数。
// 缺少 SCRIPT_NAME 的请求不可缓存。
func EnvFingerprint(keys ...string) Fingerprint {
	canon := make([]string, 0, len(keys))
	for _, k := range keys {
		canon = append(canon, xreq.CanonicalKey(k))
	}
	slices.Sort(canon)
	canon = slices.Compact(canon)

	return func(env xreq.Env) (string, bool) {
		script, ok := env.Lookup(xreq.KeyScriptName)
		if !ok || script == "" {
			return "", false
		}
		h := sha256.New()
		h.Write([]byte(script))
		for _, k := range canon {
			h.Write([]byte{0})
			h.Write([]byte(k))
			h.Write([]byte{'='})
			h.Write([]byte(env.Get(k)))
		}
		return hex.EncodeToString(h.Sum(nil)), true
	}
}

package xlifecycle

import (
	"github.com/omeyang/xserve/pkg/engine/xpipeline"
	"github.com/omeyang/xserve/pkg/engine/xreq"
)

// DefaultFingerprint 以 SCRIPT_NAME 与 QUERY_STRING 作为缓存键。
// 只有 CONTENT_LENGTH 为 0 的请求可缓存：缺少长度的请求体读到 EOF，可能非空。
func DefaultFingerprint() xpipeline.Fingerprint {
	byQuery := xpipeline.EnvFingerprint("QUERY_STRING")
	return func(env xreq.Env) (string, bool) {
		if n, err := env.ContentLength(); err != nil || n != 0 {
			return "", false
		}
		return byQuery(env)
	}
}

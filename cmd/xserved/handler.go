package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/omeyang/xserve/pkg/engine/xpipeline"
	"github.com/omeyang/xserve/pkg/engine/xreq"
)

// maxDemoBody 演示处理器读取请求体的上限。
const maxDemoBody = 1 << 20

// errDemoFailure /fail 未指定状态码时返回的通用错误。
var errDemoFailure = errors.New("demo failure")

// demoHandler 按 SCRIPT_NAME 路由的演示处理器：
//
//	/echo    原样返回请求体
//	/upper   返回大写的请求体
//	/fail    ?status=N 时返回状态码错误，否则返回通用错误并由失败回调响应
//	/defer   结果延后，请求快照按关联 ID 保存
//
// X-Request-Id 只出现在不会被缓存的响应中，缓存命中重放的是首个请求的字节。
func demoHandler() xpipeline.Handler {
	return xpipeline.HandlerFunc(func(rc *xreq.RequestContext) (xpipeline.Result, error) {
		route := rc.Env().Get(xreq.KeyScriptName)
		resp := rc.Response()
		if !rc.Cacheable() {
			resp.SetHeader("X-Request-Id", rc.RequestID())
		}

		switch route {
		case "/echo", "/upper":
			body, err := io.ReadAll(io.LimitReader(rc.Input(), maxDemoBody))
			if err != nil {
				return xpipeline.Result{}, xpipeline.Status(400, err)
			}
			if route == "/upper" {
				body = bytes.ToUpper(body)
			}
			resp.SetHeader("Content-Type", "application/octet-stream")
			if _, err := resp.Write(body); err != nil {
				return xpipeline.Result{}, err
			}
			return xpipeline.Done(200), nil

		case "/fail":
			query, _ := url.ParseQuery(rc.Env().Get("QUERY_STRING"))
			if s := query.Get("status"); s != "" {
				code, err := strconv.Atoi(s)
				if err != nil {
					return xpipeline.Result{}, xpipeline.Statusf(400, "bad status %q", s)
				}
				return xpipeline.Result{}, xpipeline.Statusf(code, "requested status %d", code)
			}
			rc.OnFailure(func(rc *xreq.RequestContext, err error) {
				rc.Response().SetStatus(503)
				_, _ = fmt.Fprintf(rc.Response(), "unavailable: %v\n", err)
			})
			return xpipeline.Result{}, errDemoFailure

		case "/defer":
			resp.SetHeader("X-Correlation-Id", rc.CorrelationID())
			resp.SetStatus(202)
			if _, err := fmt.Fprintf(resp, "accepted %s\n", rc.CorrelationID()); err != nil {
				return xpipeline.Result{}, err
			}
			return xpipeline.Deferred(202), nil

		default:
			return xpipeline.Result{}, xpipeline.Statusf(404, "no route %q", route)
		}
	})
}

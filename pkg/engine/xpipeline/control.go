package xpipeline

import (
	"fmt"
	"strings"

	"github.com/omeyang/xserve/pkg/engine/xreq"
	"github.com/omeyang/xserve/pkg/observability/xlog"
)

// 控制动词，取自 XSERVE_CONTROL。
const (
	ControlExit    = "exit"
	ControlHelp    = "help"
	ControlVersion = "version"
	ControlAdmin   = "admin"
)

const helpText = `control verbs (XSERVE_CONTROL):
  exit     stop accepting work (only when honor exit is enabled)
  help     show this text
  version  show the engine version
  admin    show counters and shutdown state
`

// control 处理控制请求。handled 为 false 时请求继续交给业务处理器。
func (r *run) control(env xreq.Env) (Outcome, bool) {
	p := r.p
	verb := strings.ToLower(strings.TrimSpace(env.Get(xreq.KeyControl)))

	var body string
	outcome := Success
	switch verb {
	case ControlExit:
		if !p.honorExit {
			return 0, false
		}
		p.exit.RequestShutdown("exit request")
		body = "shutting down\n"
		outcome = HandledExitRequest
	case ControlHelp:
		body = helpText
	case ControlVersion:
		body = p.version + "\n"
	case ControlAdmin:
		snap := p.counters.Snapshot()
		body = fmt.Sprintf("iterations=%d errors=%d shutting_down=%t reason=%q\n",
			snap.Iterations, snap.Errors, p.exit.ShuttingDown(), p.exit.Reason())
	default:
		return 0, false
	}

	resp := xreq.NewResponse(r.out)
	resp.SetHeader("Content-Type", "text/plain; charset=utf-8")
	if _, err := resp.WriteString(body); err != nil {
		p.logger.Warn(r.ctx, "write control response failed", xlog.Err(err))
	}
	r.resp = resp
	r.verb = verb
	return outcome, true
}

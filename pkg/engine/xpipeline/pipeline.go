package xpipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/omeyang/xserve/pkg/context/xctx"
	"github.com/omeyang/xserve/pkg/engine/xcounter"
	"github.com/omeyang/xserve/pkg/engine/xexit"
	"github.com/omeyang/xserve/pkg/engine/xreq"
	"github.com/omeyang/xserve/pkg/engine/xstats"
	"github.com/omeyang/xserve/pkg/engine/xtee"
	"github.com/omeyang/xserve/pkg/observability/xlog"
)

// DefaultVersion version 控制请求的默认输出。
const DefaultVersion = "xserve (devel)"

// Pipeline 请求流水线。配置在 New 之后只读，ProcessOne 可被多个 worker 并发调用。
type Pipeline struct {
	handler  Handler
	counters *xcounter.Counters
	exit     *xexit.Coordinator

	tee         *xtee.Adapter
	fingerprint Fingerprint
	sink        xstats.Sink
	logger      xlog.Logger
	newID       func() (string, error)
	seq         atomic.Uint64

	honorExit          bool
	stopOnFirstFailure bool
	version            string
	now                func() time.Time
}

// New 创建流水线。counters 与 exit 由生命周期控制器持有并在所有 worker 间共享。
func New(handler Handler, counters *xcounter.Counters, exit *xexit.Coordinator, opts ...Option) (*Pipeline, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if counters == nil {
		return nil, ErrNilCounters
	}
	if exit == nil {
		return nil, ErrNilCoordinator
	}
	p := &Pipeline{
		handler:  handler,
		counters: counters,
		exit:     exit,
		sink:     xstats.Discard,
		logger:   xlog.Discard(),
		version:  DefaultVersion,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.logger = p.logger.With(xlog.Component("xpipeline"))
	return p, nil
}

// run 单个请求的处理状态，只属于处理它的 worker。
type run struct {
	p      *Pipeline
	ctx    context.Context
	start  time.Time
	raw    *xreq.RawRequest
	id     string
	worker int

	out     *countingWriter
	in      *countingReader
	rec     *xtee.Recorder
	capture *xtee.Capture
	resp    *xreq.Response
	rc      *xreq.RequestContext

	verb        string
	fingerprint string
	cacheHit    bool
	cacheStatus int
	deferred    bool
	err         error
}

// ProcessOne 处理一个请求并返回结果。
//
// 迭代计数总是加一，失败时错误计数加一。每个请求向 Sink 输出一条统计记录；
// 通用失败先输出带调用栈的错误日志，其记录标记为 Logged，日志类 Sink 不再重复输出。
func (p *Pipeline) ProcessOne(ctx context.Context, raw *xreq.RawRequest) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	r := p.begin(ctx, raw)
	outcome := r.execute()
	r.finish(outcome)
	return outcome
}

func (p *Pipeline) begin(ctx context.Context, raw *xreq.RawRequest) *run {
	r := &run{p: p, start: p.now(), raw: raw}
	r.worker, _ = xctx.Worker(ctx)
	r.id = p.requestID()
	r.ctx, _ = xctx.WithRequestID(ctx, r.id)

	var w io.Writer = io.Discard
	if raw != nil && raw.Output != nil {
		w = raw.Output
	}
	r.out = &countingWriter{w: w}
	r.in = &countingReader{r: emptyReader{}}
	return r
}

func (p *Pipeline) requestID() string {
	seq := p.seq.Add(1)
	if p.newID != nil {
		if id, err := p.newID(); err == nil && id != "" {
			return id
		}
	}
	return "r" + strconv.FormatUint(seq, 36)
}

func (r *run) execute() Outcome {
	p := r.p
	if r.raw == nil {
		return r.envFailure(xreq.ErrNilRequest)
	}
	if r.raw.Err != nil {
		return r.envFailure(r.raw.Err)
	}
	env, err := xreq.Capture(r.raw.Meta)
	if err != nil {
		return r.envFailure(err)
	}
	if route := env.Get(xreq.KeyScriptName); route != "" {
		r.ctx, _ = xctx.WithRoute(r.ctx, route)
	}
	if r.raw.Body != nil {
		r.in.r = r.raw.Body
	}
	var in io.Reader = r.in
	if p.tee != nil {
		r.rec = p.tee.Record(r.in)
		in = r.rec
	}

	if outcome, handled := r.control(env); handled {
		return outcome
	}

	if p.tee != nil && p.fingerprint != nil {
		if key, ok := p.fingerprint(env); ok && key != "" {
			r.fingerprint = key
			if data, hit := p.tee.TryServe(r.ctx, key); hit {
				return r.serveCached(data)
			}
		}
	}

	var target io.Writer = r.out
	if r.fingerprint != "" {
		r.capture = p.tee.Tee(r.out)
		target = r.capture
	}
	r.resp = xreq.NewResponse(target)
	r.rc = xreq.NewRequestContext(r.ctx, env, in, r.resp)
	r.rc.SetIdentity(r.id, r.worker)
	r.rc.SetCacheable(r.capture != nil)

	res, err := p.invoke(r.rc)
	return r.triage(res, err)
}

// invoke 调用处理器，panic 转为 *PanicError。
func (p *Pipeline) invoke(rc *xreq.RequestContext) (res Result, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return p.handler.Execute(rc)
}

func (r *run) triage(res Result, err error) Outcome {
	p := r.p
	switch Classify(err) {
	case KindNone:
		if res.Status > 0 && !r.resp.SetStatus(res.Status) && r.resp.Status() != res.Status {
			p.logger.Warn(r.ctx, "result status ignored, response head already written",
				slog.Int("status", res.Status), slog.Int("written", r.resp.Status()))
		}
		r.deferred = !res.Ready
		r.populate()
		return Success

	case KindStatusOK:
		// 处理器以异常结束，没有给出就绪信号，捕获不可信。
		r.resp.SetStatus(StatusCode(err))
		r.discardCapture()
		return Success

	case KindStatus, KindEnv:
		r.err = err
		code := StatusCode(err)
		if code == 0 {
			code = 400
		}
		r.resp.SetStatus(code)
		if ferr := r.resp.Flush(); ferr != nil {
			p.logger.Warn(r.ctx, "flush failed response", xlog.Err(ferr))
		}
		r.resp.MarkBroken()
		r.discardCapture()
		return RecoverableFailure

	default:
		r.err = err
		r.discardCapture()
		if cb := r.rc.FailureCallback(); cb != nil {
			r.callback(cb, err)
		}
		if !r.resp.HeadWritten() {
			r.resp.SetStatus(500)
		}
		if p.stopOnFirstFailure {
			p.exit.RequestShutdown(fmt.Sprintf("stop on first failure: %v", err))
		}
		return FatalFailure
	}
}

// callback 调用异常回调。回调自身的 panic 只记录日志。
func (r *run) callback(cb func(*xreq.RequestContext, error), err error) {
	defer func() {
		if v := recover(); v != nil {
			r.p.logger.Error(r.ctx, "failure callback panicked", slog.Any("panic", v))
		}
	}()
	cb(r.rc, err)
}

// populate 在成功时处置捕获：就绪则写缓存，延后则保存请求快照。
func (r *run) populate() {
	p := r.p
	if p.tee == nil {
		return
	}
	// 头部在首次写入时才物化，先刷新保证捕获包含完整响应。
	if err := r.resp.Flush(); err != nil {
		r.discardCapture()
		p.logger.Warn(r.ctx, "flush before cache populate failed", xlog.Err(err))
		return
	}
	p.tee.Finish(r.ctx, r.capture, xtee.Outcome{
		Fingerprint:   r.fingerprint,
		Ready:         !r.deferred,
		Succeeded:     !r.resp.Broken(),
		CorrelationID: r.rc.CorrelationID(),
		Snapshot:      r.snapshot,
	})
}

func (r *run) snapshot() *xreq.Snapshot {
	if err := r.rec.Drain(); err != nil {
		r.p.logger.Warn(r.ctx, "drain deferred request body failed", xlog.Err(err))
	}
	return &xreq.Snapshot{
		ID:         r.rc.CorrelationID(),
		Env:        r.rc.Env().Clone(),
		Body:       bytes.Clone(r.rec.Bytes()),
		RemoteAddr: r.raw.RemoteAddr,
		ReceivedAt: r.raw.ReceivedAt,
		Truncated:  r.rec.Truncated(),
	}
}

func (r *run) discardCapture() {
	if r.capture != nil {
		r.capture.Discard()
	}
}

func (r *run) serveCached(data []byte) Outcome {
	r.cacheHit = true
	r.cacheStatus = xreq.StatusOK
	if parsed, err := xreq.ReadResponse(bytes.NewReader(data)); err == nil {
		r.cacheStatus = parsed.Status
	}
	if _, err := r.out.Write(data); err != nil {
		r.p.logger.Warn(r.ctx, "write cached response failed", xlog.Err(err))
	}
	return Success
}

// envFailure 以 400 响应结束无法解析的请求。
func (r *run) envFailure(cause error) Outcome {
	r.err = fmt.Errorf("%w: %w", ErrEnvironment, cause)
	resp := xreq.NewResponse(r.out)
	resp.SetStatus(400)
	resp.SetHeader("Content-Type", "text/plain; charset=utf-8")
	_, _ = resp.WriteString("bad request: " + cause.Error() + "\n")
	r.resp = resp
	return RecoverableFailure
}

func (r *run) flush() error {
	if r.resp != nil {
		return r.resp.Flush()
	}
	return r.out.Flush()
}

func (r *run) status() int {
	if r.cacheHit {
		return r.cacheStatus
	}
	if r.resp != nil {
		return r.resp.Status()
	}
	return xreq.StatusOK
}

func (r *run) finish(outcome Outcome) {
	p := r.p
	if err := r.flush(); err != nil {
		p.logger.Warn(r.ctx, "flush response failed", xlog.Err(err))
	}

	iteration := p.counters.IncIteration()
	var errs uint64
	if outcome.Failed() {
		errs = p.counters.IncError()
	} else {
		errs = p.counters.Errors()
	}

	rec := xstats.Record{
		Start:     r.start,
		Duration:  p.now().Sub(r.start),
		RequestID: r.id,
		Worker:    r.worker,
		Route:     xctx.Route(r.ctx),
		Outcome:   outcome.String(),
		Status:    r.status(),
		BytesIn:   r.in.n,
		BytesOut:  r.out.n,
		CacheHit:  r.cacheHit,
		Deferred:  r.deferred,
		Iteration: iteration,
		Errors:    errs,
	}

	switch outcome {
	case FatalFailure:
		attrs := append(rec.Attrs(), xlog.Err(r.err), slog.String("kind", Classify(r.err).String()))
		var pe *PanicError
		if errors.As(r.err, &pe) {
			attrs = append(attrs, slog.String("panic_stack", string(pe.Stack)))
		}
		p.logger.Stack(r.ctx, "request failed", attrs...)
		rec.Logged = true
	case RecoverableFailure:
		p.logger.Warn(r.ctx, "request failed",
			xlog.Err(r.err), slog.String("kind", Classify(r.err).String()), slog.Int("status", rec.Status))
	}
	p.sink.Emit(r.ctx, rec)
}

package xmetrics

import (
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/omeyang/xserve/pkg/engine/xstats"
)

const (
	attrOutcome     = "outcome"
	attrStatusClass = "status_class"
	attrCache       = "cache"
	attrRoute       = "route"
	attrDirection   = "direction"
)

var (
	directionIn  = attribute.NewSet(attribute.String(attrDirection, "in"))
	directionOut = attribute.NewSet(attribute.String(attrDirection, "out"))
)

// statusClass 把状态码归为 1xx..5xx，无法归类时返回 "unknown"。
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

func cacheState(r xstats.Record) string {
	switch {
	case r.CacheHit:
		return "hit"
	case r.Deferred:
		return "deferred"
	default:
		return "miss"
	}
}

// requestAttrs 返回请求数与耗时共用的属性集。
func requestAttrs(r xstats.Record, routes bool) attribute.Set {
	outcome := r.Outcome
	if outcome == "" {
		outcome = "unknown"
	}
	kv := make([]attribute.KeyValue, 0, 4)
	kv = append(kv,
		attribute.String(attrOutcome, outcome),
		attribute.String(attrStatusClass, statusClass(r.Status)),
		attribute.String(attrCache, cacheState(r)),
	)
	if routes && r.Route != "" {
		kv = append(kv, attribute.String(attrRoute, r.Route))
	}
	return attribute.NewSet(kv...)
}

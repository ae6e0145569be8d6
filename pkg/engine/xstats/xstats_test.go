package xstats

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xserve/pkg/observability/xlog"
)

func sampleRecord() Record {
	return Record{
		Start:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Microsecond,
		RequestID: "r-1",
		Worker:    2,
		Route:     "/echo",
		Outcome:   "success",
		Status:    200,
		BytesIn:   5,
		BytesOut:  30,
		CacheHit:  true,
		Iteration: 7,
		Errors:    1,
	}
}

func TestRecord_String(t *testing.T) {
	got := sampleRecord().String()
	assert.Equal(t,
		"start=2026-03-01T12:00:00Z duration=1.5ms request_id=r-1 worker=2 route=/echo "+
			"outcome=success status=200 in=5 out=30 cache=hit iteration=7 errors=1",
		got)

	r := Record{Outcome: "recoverable_failure", Deferred: true}
	assert.Contains(t, r.String(), "deferred=true")
	assert.NotContains(t, r.String(), "request_id=")
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := xlog.New().SetOutput(&buf).Build()
	require.NoError(t, err)

	NewLogSink(logger).Emit(context.Background(), sampleRecord())
	out := buf.String()
	assert.Contains(t, out, "msg=request")
	assert.Contains(t, out, "outcome=success")
	assert.Contains(t, out, "cache_hit=true")

	buf.Reset()
	NewLogSink(logger).Emit(context.Background(), Record{Outcome: "fatal_failure", Logged: true})
	assert.Empty(t, buf.String(), "stack log already covers the request")

	var nilSink *LogSink
	assert.NotPanics(t, func() { nilSink.Emit(context.Background(), Record{}) })
}

func TestMulti(t *testing.T) {
	var got []string
	a := SinkFunc(func(_ context.Context, r Record) { got = append(got, "a:"+r.Outcome) })
	b := SinkFunc(func(_ context.Context, r Record) { got = append(got, "b:"+r.Outcome) })

	Multi(a, nil, b).Emit(context.Background(), Record{Outcome: "success"})
	assert.Equal(t, "a:success,b:success", strings.Join(got, ","))

	assert.NotNil(t, Multi())
	Multi().Emit(context.Background(), Record{})
}

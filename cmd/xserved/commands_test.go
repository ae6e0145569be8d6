package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xserve/pkg/engine/xcounter"
	"github.com/omeyang/xserve/pkg/engine/xexit"
	"github.com/omeyang/xserve/pkg/engine/xpipeline"
	"github.com/omeyang/xserve/pkg/engine/xreq"
)

func serveDemo(t *testing.T, route, query, body string) *xreq.ParsedResponse {
	t.Helper()
	p, err := xpipeline.New(demoHandler(), xcounter.New(), xexit.New())
	require.NoError(t, err)

	var out bytes.Buffer
	meta := []xreq.Pair{{Key: xreq.KeyScriptName, Value: route}, {Key: "QUERY_STRING", Value: query}}
	p.ProcessOne(context.Background(), &xreq.RawRequest{
		Meta:   meta,
		Body:   strings.NewReader(body),
		Output: &out,
	})
	resp, err := xreq.ReadResponse(&out)
	require.NoError(t, err)
	return resp
}

func TestDemoHandler(t *testing.T) {
	tests := []struct {
		name   string
		route  string
		query  string
		body   string
		status int
		want   string
	}{
		{"echo", "/echo", "", "hello", 200, "hello"},
		{"upper", "/upper", "", "hello", 200, "HELLO"},
		{"status failure", "/fail", "status=418", "", 418, ""},
		{"bad status", "/fail", "status=teapot", "", 400, ""},
		{"generic failure", "/fail", "", "", 503, "unavailable: demo failure\n"},
		{"deferred", "/defer", "", "", 202, "accepted "},
		{"unknown route", "/nope", "", "", 404, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serveDemo(t, tt.route, tt.query, tt.body)
			assert.Equal(t, tt.status, resp.Status)
			assert.True(t, strings.HasPrefix(string(resp.Body), tt.want), "body %q", resp.Body)
		})
	}
}

func TestDemoHandler_RequestIDOmittedWhenCacheable(t *testing.T) {
	for _, cacheable := range []bool{false, true} {
		env, err := xreq.Capture([]xreq.Pair{{Key: xreq.KeyScriptName, Value: "/echo"}})
		require.NoError(t, err)
		var out bytes.Buffer
		resp := xreq.NewResponse(&out)
		rc := xreq.NewRequestContext(context.Background(), env, strings.NewReader("hi"), resp)
		rc.SetIdentity("req-1", 0)
		rc.SetCacheable(cacheable)

		_, err = demoHandler().Execute(rc)
		require.NoError(t, err)
		require.NoError(t, resp.Flush())

		parsed, err := xreq.ReadResponse(&out)
		require.NoError(t, err)
		var ids []string
		for _, h := range parsed.Header {
			if h.Key == "X-Request-Id" {
				ids = append(ids, h.Value)
			}
		}
		if cacheable {
			assert.Empty(t, ids, "cached bytes are replayed to later requests")
		} else {
			assert.Equal(t, []string{"req-1"}, ids)
		}
	}
}

func TestParseEnvPairs(t *testing.T) {
	pairs, err := parseEnvPairs([]string{"SCRIPT_NAME=/echo", "QUERY_STRING=a=1&b=2", "EMPTY="})
	require.NoError(t, err)
	assert.Equal(t, []xreq.Pair{
		{Key: "SCRIPT_NAME", Value: "/echo"},
		{Key: "QUERY_STRING", Value: "a=1&b=2"},
		{Key: "EMPTY", Value: ""},
	}, pairs)

	for _, bad := range []string{"NOVALUE", "=x", " =x"} {
		_, err := parseEnvPairs([]string{bad})
		var usage *usageError
		assert.ErrorAs(t, err, &usage, bad)
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"xserved"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_CheckConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xserve.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 3\nmax_iterations: 10\n"), 0o600))

	code, out, _ := runCLI(t, "--config", path, "check-config")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, `"Workers": 3`)
	assert.Contains(t, out, `"MaxIterations": 10`)
}

func TestRun_CheckConfigInvalid(t *testing.T) {
	t.Setenv("XSERVE_WORKERS", "0")
	code, _, errOut := runCLI(t, "check-config")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "workers")
}

func TestRun_UsageErrors(t *testing.T) {
	code, _, _ := runCLI(t, "check-config", "--bogus")
	assert.Equal(t, 2, code)

	code, _, errOut := runCLI(t, "send", "--address", "127.0.0.1:1", "--env", "NOVALUE")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "KEY=VALUE")

	code, _, _ = runCLI(t, "send", "--address", "127.0.0.1:1", "--body", "x", "--body-file", "y")
	assert.Equal(t, 2, code)
}

func TestRun_ServeConfigError(t *testing.T) {
	code, _, errOut := runCLI(t, "serve", "--workers", "0")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "workers")
}

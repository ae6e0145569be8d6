//go:build unix

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ServeAndSend(t *testing.T) {
	address := "unix://" + filepath.Join(t.TempDir(), "xserve.sock")

	type served struct {
		code   int
		stderr string
	}
	done := make(chan served, 1)
	go func() {
		var stdout, stderr bytes.Buffer
		code := run(context.Background(),
			[]string{"xserved", "serve", "--listen", address, "--max-iterations", "1", "--workers", "1"},
			&stdout, &stderr)
		done <- served{code, stderr.String()}
	}()

	var out string
	require.Eventually(t, func() bool {
		code, stdout, _ := runCLI(t, "send", "--address", address, "--timeout", "2s",
			"--env", "SCRIPT_NAME=/upper", "--body", "ping")
		out = stdout
		return code == 0
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, out, "Status: 200")
	assert.Contains(t, out, "PING")

	select {
	case s := <-done:
		assert.Equal(t, 0, s.code, s.stderr)
		assert.Contains(t, s.stderr, "iteration ceiling 1")
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after the iteration ceiling")
	}
}

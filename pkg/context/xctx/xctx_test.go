package xctx_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/omeyang/xserve/pkg/context/xctx"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	ctx, err := xctx.WithRequestID(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("WithRequestID() error = %v", err)
	}
	if got := xctx.RequestID(ctx); got != "req-1" {
		t.Errorf("RequestID() = %q, want %q", got, "req-1")
	}
	if got, err := xctx.RequireRequestID(ctx); err != nil || got != "req-1" {
		t.Errorf("RequireRequestID() = %q, %v", got, err)
	}
	if _, err := xctx.RequireRequestID(context.Background()); !errors.Is(err, xctx.ErrMissingRequestID) {
		t.Errorf("RequireRequestID() error = %v, want ErrMissingRequestID", err)
	}
}

func TestNilContext(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // 故意传入 nil context
	if _, err := xctx.WithRequestID(nil, "x"); !errors.Is(err, xctx.ErrNilContext) {
		t.Errorf("WithRequestID(nil) error = %v", err)
	}
	//nolint:staticcheck // 故意传入 nil context
	if _, err := xctx.WithWorker(nil, 1); !errors.Is(err, xctx.ErrNilContext) {
		t.Errorf("WithWorker(nil) error = %v", err)
	}
	//nolint:staticcheck // 故意传入 nil context
	if _, err := xctx.WithRequest(nil, xctx.Request{}); !errors.Is(err, xctx.ErrNilContext) {
		t.Errorf("WithRequest(nil) error = %v", err)
	}
	//nolint:staticcheck // 故意传入 nil context
	if got := xctx.RequestAttrs(nil); got != nil {
		t.Errorf("RequestAttrs(nil) = %v, want nil", got)
	}
	//nolint:staticcheck // 故意传入 nil context
	if _, ok := xctx.Worker(nil); ok {
		t.Error("Worker(nil) ok = true")
	}
}

func TestWithRequest(t *testing.T) {
	t.Parallel()

	ctx, err := xctx.WithRequest(context.Background(), xctx.Request{RequestID: "r", Worker: 0, Route: "/echo"})
	if err != nil {
		t.Fatalf("WithRequest() error = %v", err)
	}
	w, ok := xctx.Worker(ctx)
	if !ok || w != 0 {
		t.Errorf("Worker() = %d, %v", w, ok)
	}
	if got := xctx.Route(ctx); got != "/echo" {
		t.Errorf("Route() = %q", got)
	}

	attrs := xctx.RequestAttrs(ctx)
	want := []slog.Attr{
		slog.String(xctx.KeyRequestID, "r"),
		slog.Int(xctx.KeyWorker, 0),
		slog.String(xctx.KeyRoute, "/echo"),
	}
	if len(attrs) != len(want) {
		t.Fatalf("RequestAttrs() len = %d, want %d", len(attrs), len(want))
	}
	for i := range want {
		if !attrs[i].Equal(want[i]) {
			t.Errorf("attrs[%d] = %v, want %v", i, attrs[i], want[i])
		}
	}
}

func TestRequestAttrs_Empty(t *testing.T) {
	t.Parallel()

	if got := xctx.RequestAttrs(context.Background()); got != nil {
		t.Errorf("RequestAttrs() = %v, want nil", got)
	}
}

func TestContextIsolation(t *testing.T) {
	t.Parallel()

	parent, _ := xctx.WithWorker(context.Background(), 1)
	child, _ := xctx.WithWorker(parent, 2)
	if w, _ := xctx.Worker(parent); w != 1 {
		t.Errorf("parent Worker() = %d", w)
	}
	if w, _ := xctx.Worker(child); w != 2 {
		t.Errorf("child Worker() = %d", w)
	}
}

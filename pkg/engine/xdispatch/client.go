package xdispatch

import (
	"context"
	"fmt"
	"net"

	"github.com/omeyang/xserve/pkg/engine/xreq"
)

// Send 连接 address，写出一个请求并读取完整响应。ctx 的截止时间作用于整个往返。
func Send(ctx context.Context, address string, meta []xreq.Pair, body []byte) (*xreq.ParsedResponse, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	if addr.Network == "fd" {
		return nil, fmt.Errorf("%w: cannot dial %s", ErrInvalidAddress, addr)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, addr.Network, addr.Target)
	if err != nil {
		return nil, fmt.Errorf("xdispatch: dial %s: %w", addr, err)
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(dl); err != nil {
			return nil, fmt.Errorf("xdispatch: set deadline: %w", err)
		}
	}

	if err := xreq.WriteRequest(conn, meta, body); err != nil {
		return nil, fmt.Errorf("xdispatch: write request: %w", err)
	}
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
	return xreq.ReadResponse(conn)
}

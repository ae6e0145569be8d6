package xdispatch

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
)

// Address 解析后的监听地址。
type Address struct {
	// Network 为 tcp、unix 或 fd
	Network string
	// Target tcp 的 host:port、unix 的路径或 fd 的描述符编号
	Target string
}

func (a Address) String() string {
	return a.Network + "://" + a.Target
}

// ParseAddress 解析监听地址。
//
// 支持 tcp://host:port、unix:///path、fd://N；没有 scheme 时，以 '/' 或 '.' 开头视为
// unix 路径，其他视为 tcp 的 host:port。
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	network, target, ok := strings.Cut(s, "://")
	if !ok {
		target = s
		if strings.HasPrefix(s, "/") || strings.HasPrefix(s, ".") {
			network = "unix"
		} else {
			network = "tcp"
		}
	}
	network = strings.ToLower(network)
	if target == "" {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	switch network {
	case "tcp", "tcp4", "tcp6":
		if _, _, err := net.SplitHostPort(target); err != nil {
			return Address{}, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
		}
	case "unix":
	case "fd":
		if n, err := strconv.Atoi(target); err != nil || n < 0 {
			return Address{}, fmt.Errorf("%w: bad descriptor %q", ErrInvalidAddress, target)
		}
	default:
		return Address{}, fmt.Errorf("%w: unknown scheme %q", ErrInvalidAddress, network)
	}
	return Address{Network: network, Target: target}, nil
}

// listen 按地址创建监听器。unix 地址上残留的 socket 文件会被删除。
func listen(addr Address) (net.Listener, error) {
	switch addr.Network {
	case "unix":
		if err := removeStaleSocket(addr.Target); err != nil {
			return nil, err
		}
		return net.Listen("unix", addr.Target)
	case "fd":
		n, _ := strconv.Atoi(addr.Target)
		f := os.NewFile(uintptr(n), "listener-fd-"+addr.Target)
		if f == nil {
			return nil, fmt.Errorf("%w: descriptor %d", ErrInvalidAddress, n)
		}
		defer f.Close()
		ln, err := net.FileListener(f)
		if err != nil {
			return nil, fmt.Errorf("xdispatch: listener from fd %d: %w", n, err)
		}
		return ln, nil
	default:
		return net.Listen(addr.Network, addr.Target)
	}
}

func removeStaleSocket(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("xdispatch: check socket: %w", err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("%w: %s", ErrNotSocket, path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("xdispatch: remove stale socket: %w", err)
	}
	return nil
}

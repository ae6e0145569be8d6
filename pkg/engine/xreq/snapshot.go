package xreq

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Snapshot 请求的可持久化副本。
type Snapshot struct {
	ID         string            `json:"id"`
	Env        map[string]string `json:"env"`
	Body       []byte            `json:"body,omitempty"`
	RemoteAddr string            `json:"remote_addr,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
	Truncated  bool              `json:"truncated,omitempty"`
}

// Encode 编码快照。
func (s *Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot 解码快照。
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("xreq: decode snapshot: %w", err)
	}
	return &s, nil
}

// Request 将快照还原为 RawRequest。输出流由调用方提供。
func (s *Snapshot) Request() *RawRequest {
	return &RawRequest{
		Meta:       PairsFromEnv(Env(s.Env)),
		Body:       bytes.NewReader(s.Body),
		RemoteAddr: s.RemoteAddr,
		ReceivedAt: s.ReceivedAt,
	}
}

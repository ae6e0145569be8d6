package xtee

import "errors"

var (
	// ErrNilStore 未提供缓存存储。
	ErrNilStore = errors.New("xtee: nil store")

	// ErrEmptyFingerprint 指纹为空。
	ErrEmptyFingerprint = errors.New("xtee: empty fingerprint")

	// ErrEmptyCorrelationID 关联 ID 为空。
	ErrEmptyCorrelationID = errors.New("xtee: empty correlation id")

	// ErrNilSnapshot 请求快照为 nil。
	ErrNilSnapshot = errors.New("xtee: nil snapshot")
)

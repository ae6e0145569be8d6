package xsys

import (
	"strconv"
	"strings"
)

func validateFileLimit(limit uint64) error {
	if limit == 0 {
		return ErrInvalidFileLimit
	}
	return nil
}

// parseStatm 解析 statm 第二列（resident 页数）并换算为字节。
func parseStatm(data string, pageSize uint64) (uint64, error) {
	fields := strings.Fields(data)
	if len(fields) < 2 {
		return 0, ErrMalformedStatm
	}
	pages, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, ErrMalformedStatm
	}
	return pages * pageSize, nil
}

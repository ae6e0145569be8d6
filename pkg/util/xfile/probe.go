package xfile

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

// State 文件在某一时刻的状态。
type State struct {
	Exists  bool
	ModTime time.Time
	Size    int64
}

// Changed 报告 s 相对 prev 是否发生了变化（出现、消失或修改时间/大小变化）。
func (s State) Changed(prev State) bool {
	if s.Exists != prev.Exists {
		return true
	}
	if !s.Exists {
		return false
	}
	return !s.ModTime.Equal(prev.ModTime) || s.Size != prev.Size
}

// statFn 可替换的 stat 实现，用于测试。
var statFn = os.Stat

// Probe 读取文件状态。
//
// 文件不存在时返回 Exists=false 且无错误；其他 stat 失败（如权限不足）返回错误。
func Probe(path string) (State, error) {
	info, err := statFn(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, nil
		}
		return State{}, err
	}
	return State{Exists: true, ModTime: info.ModTime(), Size: info.Size()}, nil
}

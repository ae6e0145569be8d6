package xexit

import "errors"

// ErrNilStopper 表示 Bind 传入了 nil Stopper。
var ErrNilStopper = errors.New("xexit: nil stopper")

// ErrAlreadyBound 表示 Stopper 已经绑定过。
var ErrAlreadyBound = errors.New("xexit: stopper already bound")

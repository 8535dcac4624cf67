package messenger

import "errors"

// 公共错误定义
var (
	// ErrNotStarted messenger 未启动
	ErrNotStarted = errors.New("messenger not started")

	// ErrAlreadyStarted messenger 已启动
	ErrAlreadyStarted = errors.New("messenger already started")

	// ErrClosed messenger 已关闭
	ErrClosed = errors.New("messenger closed")
)

package dispatch

import "errors"

var (
	// ErrClosed 执行上下文已关闭
	ErrClosed = errors.New("dispatch: closed")
	// ErrNotRunning 工作池未启动
	ErrNotRunning = errors.New("dispatch: not running")
	// ErrAlreadyRunning 重复启动
	ErrAlreadyRunning = errors.New("dispatch: already running")
	// ErrQueueFull 队列已满
	ErrQueueFull = errors.New("dispatch: queue full")
	// ErrNilTask 任务为空
	ErrNilTask = errors.New("dispatch: nil task")
)

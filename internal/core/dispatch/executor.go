package dispatch

import (
	"runtime/debug"
	"sync/atomic"
)

// Stats 执行统计
type Stats struct {
	// Accepted 成功入队的任务数
	Accepted uint64
	// Rejected 因队列满或已关闭被拒绝的任务数
	Rejected uint64
	// Executed 已执行的任务数（含 panic）
	Executed uint64
	// Panicked 执行中 panic 的任务数
	Panicked uint64
}

type counters struct {
	accepted atomic.Uint64
	rejected atomic.Uint64
	executed atomic.Uint64
	panicked atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Accepted: c.accepted.Load(),
		Rejected: c.rejected.Load(),
		Executed: c.executed.Load(),
		Panicked: c.panicked.Load(),
	}
}

// execute 执行任务并恢复 panic
//
// 任务 panic 不会终止消费 goroutine。
func execute(c *counters, where string, fn func()) {
	defer func() {
		c.executed.Add(1)
		if r := recover(); r != nil {
			c.panicked.Add(1)
			logger.Error("任务执行 panic",
				"where", where,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

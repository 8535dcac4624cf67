package dispatch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-messenger/pkg/lib/log"
)

var logger = log.Logger("core/dispatch")

// DefaultLoopQueueSize 默认 UI 队列长度
const DefaultLoopQueueSize = 256

// Loop UI 执行上下文
//
// 一个带缓冲的任务通道加一个专用消费者。宿主程序在其 UI goroutine 上
// 调用 Run（或周期性调用 Drain），所有 Post 进来的任务都在该 goroutine 上执行。
type Loop struct {
	queue chan func()

	mu     sync.RWMutex // Post 的关闭检查与入队在同一读锁内，Close 持写锁
	closed bool
	done   chan struct{}

	consuming atomic.Bool
	stats     counters
}

// NewLoop 创建 UI 执行上下文，size <= 0 时使用默认长度
func NewLoop(size int) *Loop {
	if size <= 0 {
		size = DefaultLoopQueueSize
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post 将 fn 排入队列，不阻塞
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return ErrNilTask
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		l.stats.rejected.Add(1)
		return ErrClosed
	}

	select {
	case l.queue <- fn:
		l.stats.accepted.Add(1)
		return nil
	default:
		l.stats.rejected.Add(1)
		return ErrQueueFull
	}
}

// Run 在当前 goroutine 上消费任务，直到 ctx 取消或 Close
//
// 同一时刻只允许一个消费者。Close 之后已入队的任务会先执行完。
func (l *Loop) Run(ctx context.Context) error {
	if !l.consuming.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.consuming.Store(false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			l.drain()
			return nil
		case fn := <-l.queue:
			execute(&l.stats, "ui", fn)
		}
	}
}

// Drain 在当前 goroutine 上执行所有待处理任务，返回执行数量
//
// 供自行驱动消息循环的宿主使用；Run 运行期间调用返回 0。
func (l *Loop) Drain() int {
	if !l.consuming.CompareAndSwap(false, true) {
		return 0
	}
	defer l.consuming.Store(false)
	return l.drain()
}

func (l *Loop) drain() int {
	n := 0
	for {
		select {
		case fn := <-l.queue:
			execute(&l.stats, "ui", fn)
			n++
		default:
			return n
		}
	}
}

// Close 关闭执行上下文，之后 Post 返回 ErrClosed
//
// Close 返回前被接受的任务都已在队列中，Run 退出前会执行完。
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
}

// Done 关闭时被关闭的通道
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Pending 队列中待执行任务数
func (l *Loop) Pending() int {
	return len(l.queue)
}

// Stats 返回执行统计
func (l *Loop) Stats() Stats {
	return l.stats.snapshot()
}

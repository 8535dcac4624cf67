package dispatch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWorkers 默认工作者数量
	DefaultWorkers = 4
	// DefaultPoolQueueSize 默认后台队列长度
	DefaultPoolQueueSize = 1024
)

// Pool 后台工作池
//
// 固定数量的工作者从有界队列取任务执行。Submit 不阻塞，队列满时返回
// ErrQueueFull。任务之间没有顺序保证。
type Pool struct {
	workers   int
	queueSize int

	mu      sync.RWMutex // 保护 queue 的创建与关闭
	queue   chan func()
	running bool
	group   *errgroup.Group

	stats counters
}

// PoolOption 工作池选项
type PoolOption func(*Pool)

// WithWorkers 设置工作者数量
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithQueueSize 设置队列长度
func WithQueueSize(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// NewPool 创建工作池（需调用 Start）
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		workers:   DefaultWorkers,
		queueSize: DefaultPoolQueueSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start 启动工作者
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}

	p.queue = make(chan func(), p.queueSize)
	p.group = new(errgroup.Group)
	p.running = true

	queue := p.queue
	for i := 0; i < p.workers; i++ {
		p.group.Go(func() error {
			for fn := range queue {
				execute(&p.stats, "background", fn)
			}
			return nil
		})
	}

	logger.Debug("后台工作池已启动", "workers", p.workers, "queue", p.queueSize)
	return nil
}

// Stop 停止接收新任务并等待已入队任务完成
//
// ctx 到期时返回 ctx.Err()，剩余任务仍会在后台执行完。
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.running = false
	close(p.queue)
	group := p.group
	p.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- group.Wait()
	}()

	select {
	case err := <-done:
		logger.Debug("后台工作池已停止")
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit 提交任务，不阻塞
func (p *Pool) Submit(fn func()) error {
	if fn == nil {
		return ErrNilTask
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running {
		p.stats.rejected.Add(1)
		return ErrNotRunning
	}

	select {
	case p.queue <- fn:
		p.stats.accepted.Add(1)
		return nil
	default:
		p.stats.rejected.Add(1)
		return ErrQueueFull
	}
}

// Running 是否运行中
func (p *Pool) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Stats 返回执行统计
func (p *Pool) Stats() Stats {
	return p.stats.snapshot()
}

// Pending 队列中待执行任务数
func (p *Pool) Pending() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running {
		return 0
	}
	return len(p.queue)
}

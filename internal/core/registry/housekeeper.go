package registry

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

// Housekeeper 周期性清理失效订阅
//
// 发布时已经会清理失效订阅；Housekeeper 负责那些长时间没有发布的事件。
type Housekeeper struct {
	clock    clock.Clock
	interval time.Duration
	targets  []pkgif.Pruner

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHousekeeper 创建清理器，interval <= 0 时 Start 不做任何事
func NewHousekeeper(clk clock.Clock, interval time.Duration, targets ...pkgif.Pruner) *Housekeeper {
	if clk == nil {
		clk = clock.New()
	}
	return &Housekeeper{
		clock:    clk,
		interval: interval,
		targets:  targets,
	}
}

// Start 启动后台清理
func (h *Housekeeper) Start() {
	if h.interval <= 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done = make(chan struct{})

	ticker := h.clock.Ticker(h.interval)
	go h.loop(ctx, ticker, h.done)
}

func (h *Housekeeper) loop(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.Sweep(); n > 0 {
				logger.Debug("周期清理完成", "pruned", n)
			}
		}
	}
}

// Sweep 立即清理一次，返回移除总数
func (h *Housekeeper) Sweep() int {
	total := 0
	for _, t := range h.targets {
		total += t.Prune()
	}
	return total
}

// Stop 停止后台清理并等待退出
func (h *Housekeeper) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

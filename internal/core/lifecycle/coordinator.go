// Package lifecycle 提供 messenger 生命周期协调器
//
// 阶段按序推进：
//   - created: 已创建，未启动
//   - dispatch_ready: 后台工作池已启动
//   - running: 全部模块已启动，可以发布事件
//   - draining: 正在关闭，等待排队中的投递完成
//   - stopped: 已关闭
//
// 阶段变更通过一个 Typed[Change] 总线通知，等待者通过广播通道唤醒。
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dep2p/go-messenger/internal/core/eventbus"
	"github.com/dep2p/go-messenger/pkg/lib/log"
)

var logger = log.Logger("core/lifecycle")

// ErrStopped 协调器已停止，等待被解除
var ErrStopped = errors.New("lifecycle coordinator stopped")

// ============================================================================
//                              阶段定义
// ============================================================================

// Phase 生命周期阶段
type Phase int

const (
	// PhaseCreated 已创建，未启动
	PhaseCreated Phase = iota

	// PhaseDispatchReady 后台工作池已启动
	PhaseDispatchReady

	// PhaseRunning 稳态运行
	PhaseRunning

	// PhaseDraining 正在关闭
	PhaseDraining

	// PhaseStopped 已关闭
	PhaseStopped
)

// String 返回阶段字符串表示
func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseDispatchReady:
		return "dispatch_ready"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// Change 阶段变更通知
type Change struct {
	From Phase
	To   Phase
}

// ============================================================================
//                              生命周期协调器
// ============================================================================

// Coordinator 生命周期协调器
type Coordinator struct {
	mu    sync.Mutex
	phase Phase

	// advanced 每次推进时关闭并替换，唤醒所有等待者
	advanced chan struct{}

	stopped  chan struct{}
	stopOnce sync.Once

	changes *eventbus.Typed[Change]
}

// NewCoordinator 创建生命周期协调器
func NewCoordinator() *Coordinator {
	return &Coordinator{
		phase:    PhaseCreated,
		advanced: make(chan struct{}),
		stopped:  make(chan struct{}),
		changes:  eventbus.NewTyped[Change](eventbus.WithName("lifecycle")),
	}
}

// Phase 返回当前阶段
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Reached 是否已到达（或越过）指定阶段
func (c *Coordinator) Reached(phase Phase) bool {
	return c.Phase() >= phase
}

// AdvanceTo 推进到指定阶段，只能向前
//
// 推进到当前阶段是空操作；变更在锁外同步通知给 OnPhaseChange 的订阅者。
func (c *Coordinator) AdvanceTo(target Phase) error {
	if target < PhaseCreated || target > PhaseStopped {
		return fmt.Errorf("invalid phase: %d", target)
	}

	c.mu.Lock()
	old := c.phase
	switch {
	case target < old:
		c.mu.Unlock()
		return fmt.Errorf("cannot advance backwards: current=%s target=%s", old, target)
	case target == old:
		c.mu.Unlock()
		return nil
	}
	c.phase = target
	close(c.advanced)
	c.advanced = make(chan struct{})
	c.mu.Unlock()

	logger.Info("生命周期阶段推进", "from", old, "to", target)
	return c.changes.Publish(Change{From: old, To: target})
}

// WaitFor 阻塞直到到达指定阶段、ctx 取消或协调器停止
func (c *Coordinator) WaitFor(ctx context.Context, phase Phase) error {
	if phase < PhaseCreated || phase > PhaseStopped {
		return fmt.Errorf("invalid phase: %d", phase)
	}

	for {
		c.mu.Lock()
		cur, advanced := c.phase, c.advanced
		c.mu.Unlock()

		if cur >= phase {
			return nil
		}
		select {
		case <-advanced:
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopped:
			return ErrStopped
		}
	}
}

// OnPhaseChange 注册阶段变更回调
//
// 回调在 AdvanceTo 的调用者 goroutine 上执行，可以使用 eventbus.WithOwner
// 绑定所有者，所有者释放后回调自动移除。
func (c *Coordinator) OnPhaseChange(fn func(Change), opts ...eventbus.SubscribeOption) (eventbus.Token, error) {
	return c.changes.Subscribe(fn, opts...)
}

// Stop 停止协调器，解除所有等待
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.stopped) })
}

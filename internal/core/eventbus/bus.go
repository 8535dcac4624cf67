// Package eventbus 实现进程内事件总线
package eventbus

import (
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dep2p/go-messenger/internal/core/callback"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
	"github.com/dep2p/go-messenger/pkg/lib/log"
)

var logger = log.Logger("core/eventbus")

// dropLogLimit 投递失败告警的限流，指标不受影响
var dropLogLimit = rate.NewLimiter(rate.Every(time.Second), 16)

// ============================================================================
// Base 实现
// ============================================================================

// Base 事件总线公共部分
//
// 持有一个有序的订阅集合，所有访问都在 mu 下进行。
// 零值可用；Bus 和 Typed[T] 嵌入 Base。
type Base struct {
	mu   sync.Mutex
	subs []Subscription
	env  Env
}

// Init 设置总线环境，由 Registry 在创建时调用一次
func (b *Base) Init(env Env) {
	b.mu.Lock()
	b.env = env
	b.mu.Unlock()
}

func (b *Base) environment() Env {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.env
}

// Name 总线名称
func (b *Base) Name() string {
	return b.environment().Name
}

// UI 创建时捕获的 UI 执行上下文
func (b *Base) UI() pkgif.UIDispatcher {
	return b.environment().UI
}

// Register 注册订阅并返回新令牌
func (b *Base) Register(sub Subscription) Token {
	tok := NewToken()
	sub.bind(tok)

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	name, n := b.env.Name, len(b.subs)
	b.mu.Unlock()

	logger.Debug("订阅已添加",
		"bus", name,
		"token", tok,
		"policy", sub.Policy(),
		"subscribers", n)
	return tok
}

// Unsubscribe 按令牌移除订阅，不存在时返回 false
func (b *Base) Unsubscribe(tok Token) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.subs, func(s Subscription) bool { return s.Token() == tok })
	if i < 0 {
		return false
	}
	b.subs = slices.Delete(b.subs, i, i+1)
	logger.Debug("订阅已移除", "bus", b.env.Name, "token", tok)
	return true
}

// Contains 令牌对应的订阅是否仍在总线上
func (b *Base) Contains(tok Token) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.ContainsFunc(b.subs, func(s Subscription) bool { return s.Token() == tok })
}

// Len 当前订阅数（含尚未清理的失效订阅）
func (b *Base) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Prune 移除回调已无法解析的订阅，返回移除数量
func (b *Base) Prune() int {
	b.mu.Lock()
	before := len(b.subs)
	b.subs = slices.DeleteFunc(b.subs, func(s Subscription) bool {
		_, ok := s.Strategy()
		return !ok
	})
	n := before - len(b.subs)
	name, m := b.env.Name, b.env.Metrics
	b.mu.Unlock()

	if n > 0 {
		m.observePruned(name, n)
		logger.Debug("已清理失效订阅", "bus", name, "pruned", n)
	}
	return n
}

// removeAction 移除第一个回调与 probe 相同的订阅
func (b *Base) removeAction(probe *callback.Reference) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.subs, func(s Subscription) bool { return s.Action().Equals(probe) })
	if i < 0 {
		return false
	}
	tok := b.subs[i].Token()
	b.subs = slices.Delete(b.subs, i, i+1)
	logger.Debug("订阅已移除", "bus", b.env.Name, "token", tok)
	return true
}

func (b *Base) containsAction(probe *callback.Reference) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.ContainsFunc(b.subs, func(s Subscription) bool { return s.Action().Equals(probe) })
}

// delivery 按策略创建投递方式
func (b *Base) delivery(policy pkgif.DispatchPolicy) (Delivery, error) {
	env := b.environment()
	switch policy {
	case pkgif.PolicyInline:
		return InlineDelivery(), nil
	case pkgif.PolicyBackground:
		return BackgroundDelivery(env.Pool)
	case pkgif.PolicyUI:
		return UIDelivery(env.UI)
	default:
		return nil, ErrUnknownPolicy
	}
}

// ============================================================================
// 发布
// ============================================================================

type pending struct {
	run    Strategy
	token  Token
	policy pkgif.DispatchPolicy
}

// collect 在 mu 下按注册的逆序收集执行策略，同时移除失效订阅
func (b *Base) collect() ([]pending, Env) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]pending, 0, len(b.subs))
	pruned := 0
	for i := len(b.subs) - 1; i >= 0; i-- {
		sub := b.subs[i]
		run, ok := sub.Strategy()
		if !ok {
			b.subs = slices.Delete(b.subs, i, i+1)
			pruned++
			continue
		}
		out = append(out, pending{run: run, token: sub.Token(), policy: sub.Policy()})
	}

	if pruned > 0 {
		b.env.Metrics.observePruned(b.env.Name, pruned)
		logger.Debug("发布时清理失效订阅", "bus", b.env.Name, "pruned", pruned)
	}
	return out, b.env
}

// publish 释放 mu 之后按收集顺序执行策略
//
// 回调可以在执行期间订阅、取消订阅或再次发布，不会死锁。
// 同步回调的 panic 会传播给发布者。
func (b *Base) publish(payload any) {
	strategies, env := b.collect()
	env.Metrics.observePublish(env.Name)

	for _, p := range strategies {
		delivered, err := p.run(payload)
		if err != nil && dropLogLimit.Allow() {
			logger.Warn("事件投递失败",
				"bus", env.Name,
				"token", p.token,
				"policy", p.policy,
				"err", err)
		}
		if delivered || err != nil {
			env.Metrics.observeDelivery(env.Name, p.policy, err)
		}
	}
}

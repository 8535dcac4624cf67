package eventbus

import (
	"github.com/dep2p/go-messenger/internal/core/lifetime"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

// ============================================================================
// 总线环境
// ============================================================================

// Env 总线运行环境
//
// 由 Registry 在创建总线时注入，也可通过 Option 为独立总线设置。
type Env struct {
	// Name 总线名称，用于日志和指标标签
	Name string
	// UI 创建时捕获的 UI 执行上下文，可为空
	UI pkgif.UIDispatcher
	// Pool 后台工作池，可为空
	Pool pkgif.WorkerPool
	// Metrics 指标，可为空
	Metrics *Metrics
}

// Option 总线选项
type Option func(*Env)

// WithName 设置总线名称
func WithName(name string) Option {
	return func(e *Env) { e.Name = name }
}

// WithUI 设置 UI 执行上下文
func WithUI(ui pkgif.UIDispatcher) Option {
	return func(e *Env) { e.UI = ui }
}

// WithPool 设置后台工作池
func WithPool(pool pkgif.WorkerPool) Option {
	return func(e *Env) { e.Pool = pool }
}

// WithMetrics 设置指标
func WithMetrics(m *Metrics) Option {
	return func(e *Env) { e.Metrics = m }
}

// ============================================================================
// 订阅选项
// ============================================================================

type subscribeSettings struct {
	policy    pkgif.DispatchPolicy
	filter    any
	keepAlive bool
	owner     lifetime.Handle
}

// SubscribeOption 订阅选项
type SubscribeOption func(*subscribeSettings)

// WithPolicy 设置投递策略（默认 PolicyInline）
func WithPolicy(p pkgif.DispatchPolicy) SubscribeOption {
	return func(s *subscribeSettings) { s.policy = p }
}

// WithFilter 设置载荷过滤器
//
// 只对 Typed[T] 有效，且 T 必须一致，否则订阅返回 ErrShapeMismatch。
func WithFilter[T any](filter func(T) bool) SubscribeOption {
	return func(s *subscribeSettings) { s.filter = filter }
}

// KeepAlive 强引用持有回调，忽略所有者是否存活
func KeepAlive() SubscribeOption {
	return func(s *subscribeSettings) { s.keepAlive = true }
}

// WithOwner 将回调绑定到所有者句柄
//
// 句柄释放后订阅在下一次 Publish 或 Prune 时被移除。
// 按回调取消订阅或查询时需要传入相同的所有者。
func WithOwner(owner lifetime.Handle) SubscribeOption {
	return func(s *subscribeSettings) { s.owner = owner }
}

func applySubscribeOptions(opts []SubscribeOption) subscribeSettings {
	s := subscribeSettings{policy: pkgif.PolicyInline}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

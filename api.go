package messenger

import (
	"github.com/dep2p/go-messenger/internal/core/eventbus"
	"github.com/dep2p/go-messenger/internal/core/lifetime"
	"github.com/dep2p/go-messenger/internal/core/namedevent"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

// ════════════════════════════════════════════════════════════════════════════
//                              事件类
// ════════════════════════════════════════════════════════════════════════════

// Bus 无载荷事件类的嵌入基类
//
//	type LayoutApplied struct{ messenger.Bus }
type Bus struct {
	eventbus.Bus
}

// Typed 载荷类型为 T 的事件类的嵌入基类
//
//	type WindowsEnumerated struct{ messenger.Typed[[]Window] }
type Typed[T any] struct {
	eventbus.Typed[T]
}

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// Token 订阅令牌
	Token = eventbus.Token

	// SubscribeOption 订阅选项
	SubscribeOption = eventbus.SubscribeOption

	// DispatchPolicy 投递策略
	DispatchPolicy = pkgif.DispatchPolicy

	// Handle 订阅者所有者句柄
	Handle = lifetime.Handle

	// Arena 所有者句柄分配器
	Arena = lifetime.Arena

	// NamedEvents 按名称注册的弱事件管理器
	NamedEvents = namedevent.Manager

	// InvalidHandleEventError 具名事件处理函数形状不匹配
	InvalidHandleEventError = namedevent.InvalidHandleEventError
)

// 投递策略
const (
	PolicyInline     = pkgif.PolicyInline
	PolicyBackground = pkgif.PolicyBackground
	PolicyUI         = pkgif.PolicyUI
)

// 事件总线与具名事件错误
var (
	ErrInvalidCallback    = eventbus.ErrInvalidCallback
	ErrShapeMismatch      = eventbus.ErrShapeMismatch
	ErrNoUIContext        = eventbus.ErrNoUIContext
	ErrNoWorkerPool       = eventbus.ErrNoWorkerPool
	ErrMissingPayload     = eventbus.ErrMissingPayload
	ErrMissingName        = namedevent.ErrMissingName
	ErrMissingCallback    = namedevent.ErrMissingCallback
	ErrInvalidHandleEvent = namedevent.ErrInvalidHandleEvent
)

// ════════════════════════════════════════════════════════════════════════════
//                              订阅选项
// ════════════════════════════════════════════════════════════════════════════

// WithPolicy 设置投递策略（默认 PolicyInline）
func WithPolicy(p DispatchPolicy) SubscribeOption {
	return eventbus.WithPolicy(p)
}

// WithFilter 设置载荷过滤器，过滤器在发布者 goroutine 上每次发布求值一次
func WithFilter[T any](filter func(T) bool) SubscribeOption {
	return eventbus.WithFilter(filter)
}

// WithOwner 将回调绑定到所有者句柄，句柄释放后订阅被自动清理
func WithOwner(owner Handle) SubscribeOption {
	return eventbus.WithOwner(owner)
}

// KeepAlive 强引用持有回调
func KeepAlive() SubscribeOption {
	return eventbus.KeepAlive()
}

// NewArena 创建所有者句柄分配器
func NewArena() *Arena {
	return lifetime.NewArena()
}

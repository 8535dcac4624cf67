package eventbus

import (
	"github.com/dep2p/go-messenger/internal/core/callback"
)

// Bus 无载荷事件总线
//
// 事件类通过嵌入 Bus 定义：
//
//	type LayoutApplied struct{ eventbus.Bus }
type Bus struct {
	Base
}

// New 创建独立的无载荷总线
func New(opts ...Option) *Bus {
	env := Env{Name: "bus"}
	for _, opt := range opts {
		opt(&env)
	}
	b := &Bus{}
	b.Init(env)
	return b
}

// Subscribe 订阅事件
//
// 无载荷总线不支持过滤器，传入 WithFilter 返回 ErrShapeMismatch。
func (b *Bus) Subscribe(action func(), opts ...SubscribeOption) (Token, error) {
	s := applySubscribeOptions(opts)
	if s.filter != nil {
		return Token{}, ErrShapeMismatch
	}

	d, err := b.delivery(s.policy)
	if err != nil {
		return Token{}, err
	}
	ref, err := callback.Bind(s.owner, action, s.keepAlive)
	if err != nil {
		return Token{}, err
	}
	sub, err := NewSubscription(ref, d)
	if err != nil {
		return Token{}, err
	}
	return b.Register(sub), nil
}

// UnsubscribeAction 按回调移除第一个匹配的订阅
//
// 订阅时使用了 WithOwner 的，这里需要传入相同的所有者。
func (b *Bus) UnsubscribeAction(action func(), opts ...SubscribeOption) bool {
	probe, err := probeFor(action, opts)
	if err != nil {
		return false
	}
	return b.removeAction(probe)
}

// ContainsAction 是否存在回调相同的订阅
func (b *Bus) ContainsAction(action func(), opts ...SubscribeOption) bool {
	probe, err := probeFor(action, opts)
	if err != nil {
		return false
	}
	return b.containsAction(probe)
}

// Publish 发布事件
func (b *Bus) Publish() {
	b.publish(nil)
}

func probeFor(action any, opts []SubscribeOption) (*callback.Reference, error) {
	s := applySubscribeOptions(opts)
	return callback.Bind(s.owner, action, true)
}

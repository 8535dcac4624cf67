package eventbus

import (
	"reflect"

	"github.com/dep2p/go-messenger/internal/core/callback"
)

// Typed 载荷类型为 T 的事件总线
//
// 事件类通过嵌入 Typed[T] 定义：
//
//	type WindowsEnumerated struct{ eventbus.Typed[[]Window] }
type Typed[T any] struct {
	Base
}

// NewTyped 创建独立的有载荷总线，默认以载荷类型命名
func NewTyped[T any](opts ...Option) *Typed[T] {
	env := Env{Name: reflect.TypeFor[T]().String()}
	for _, opt := range opts {
		opt(&env)
	}
	t := &Typed[T]{}
	t.Init(env)
	return t
}

// Subscribe 订阅事件
//
// 可选 WithPolicy、WithFilter、KeepAlive、WithOwner。
// 使用 PolicyUI 而总线没有 UI 上下文时返回 ErrNoUIContext。
func (t *Typed[T]) Subscribe(action func(T), opts ...SubscribeOption) (Token, error) {
	s := applySubscribeOptions(opts)

	d, err := t.delivery(s.policy)
	if err != nil {
		return Token{}, err
	}
	act, err := callback.Bind(s.owner, action, s.keepAlive)
	if err != nil {
		return Token{}, err
	}
	var filter *callback.Reference
	if s.filter != nil {
		if filter, err = callback.Bind(s.owner, s.filter, s.keepAlive); err != nil {
			return Token{}, err
		}
	}
	sub, err := NewTypedSubscription[T](act, filter, d)
	if err != nil {
		return Token{}, err
	}
	return t.Register(sub), nil
}

// UnsubscribeAction 按回调移除第一个匹配的订阅
func (t *Typed[T]) UnsubscribeAction(action func(T), opts ...SubscribeOption) bool {
	probe, err := probeFor(action, opts)
	if err != nil {
		return false
	}
	return t.removeAction(probe)
}

// ContainsAction 是否存在回调相同的订阅
func (t *Typed[T]) ContainsAction(action func(T), opts ...SubscribeOption) bool {
	probe, err := probeFor(action, opts)
	if err != nil {
		return false
	}
	return t.containsAction(probe)
}

// Publish 发布事件
//
// value 为 nil 指针、接口、map、chan 或 func 时返回 ErrMissingPayload；
// 不需要载荷的事件应使用 Bus。
func (t *Typed[T]) Publish(value T) error {
	if absent(value) {
		return ErrMissingPayload
	}
	t.publish(value)
	return nil
}

func absent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

package eventbus

import (
	"fmt"
	"reflect"

	"github.com/dep2p/go-messenger/internal/core/callback"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

// Strategy 执行策略
//
// 捕获了已解析回调的闭包。delivered 表示回调已交给投递方式
// （过滤器拒绝时为 false）；err 为投递失败原因。
type Strategy func(payload any) (delivered bool, err error)

// Subscription 订阅
//
// 由总线持有。Strategy 返回 false 表示回调已无法解析，总线会将其移除。
type Subscription interface {
	// Token 注册后的订阅令牌
	Token() Token

	// Policy 投递策略
	Policy() pkgif.DispatchPolicy

	// Action 订阅动作的回调引用
	Action() *callback.Reference

	// Strategy 解析回调并生成执行策略
	Strategy() (Strategy, bool)

	bind(tok Token)
}

// subscription 订阅公共部分
type subscription struct {
	token    Token
	action   *callback.Reference
	delivery Delivery
}

func (s *subscription) Token() Token { return s.token }
func (s *subscription) Policy() pkgif.DispatchPolicy { return s.delivery.Policy() }
func (s *subscription) Action() *callback.Reference { return s.action }
func (s *subscription) bind(tok Token) { s.token = tok }

func checkShape(role string, ref *callback.Reference, want reflect.Type) error {
	if !ref.Conforms(want) {
		return fmt.Errorf("%w: %s is %s, want %s", ErrShapeMismatch, role, ref.Shape(), want)
	}
	return nil
}

// ============================================================================
// 无载荷订阅
// ============================================================================

var plainShape = reflect.TypeFor[func()]()

// PlainSubscription 无载荷事件的订阅
type PlainSubscription struct {
	subscription
}

// NewSubscription 创建无载荷订阅，action 形状必须为 func()
//
// delivery 为 nil 时同步投递。
func NewSubscription(action *callback.Reference, delivery Delivery) (*PlainSubscription, error) {
	if action == nil {
		return nil, ErrInvalidCallback
	}
	if err := checkShape("action", action, plainShape); err != nil {
		return nil, err
	}
	if delivery == nil {
		delivery = InlineDelivery()
	}
	return &PlainSubscription{
		subscription: subscription{action: action, delivery: delivery},
	}, nil
}

// Strategy 实现 Subscription
func (s *PlainSubscription) Strategy() (Strategy, bool) {
	fn, ok := callback.As[func()](s.action)
	if !ok {
		return nil, false
	}
	d := s.delivery
	return func(any) (bool, error) {
		return true, d.deliver(fn)
	}, true
}

// ============================================================================
// 有载荷订阅
// ============================================================================

// TypedSubscription 载荷类型为 T 的订阅
type TypedSubscription[T any] struct {
	subscription
	filter *callback.Reference
}

func alwaysTrue[T any](T) bool { return true }

// NewTypedSubscription 创建有载荷订阅
//
// action 形状必须为 func(T)，filter 形状必须为 func(T) bool；
// filter 为 nil 时总是投递。
func NewTypedSubscription[T any](action, filter *callback.Reference, delivery Delivery) (*TypedSubscription[T], error) {
	if action == nil {
		return nil, ErrInvalidCallback
	}
	if err := checkShape("action", action, reflect.TypeFor[func(T)]()); err != nil {
		return nil, err
	}
	if filter == nil {
		var err error
		if filter, err = callback.New(alwaysTrue[T], true); err != nil {
			return nil, err
		}
	}
	if err := checkShape("filter", filter, reflect.TypeFor[func(T) bool]()); err != nil {
		return nil, err
	}
	if delivery == nil {
		delivery = InlineDelivery()
	}
	return &TypedSubscription[T]{
		subscription: subscription{action: action, delivery: delivery},
		filter:       filter,
	}, nil
}

// Filter 过滤器的回调引用
func (s *TypedSubscription[T]) Filter() *callback.Reference {
	return s.filter
}

// Strategy 实现 Subscription
//
// 过滤器在发布者的 goroutine 上求值一次，通过后才交给投递方式。
func (s *TypedSubscription[T]) Strategy() (Strategy, bool) {
	act, ok := callback.As[func(T)](s.action)
	if !ok {
		return nil, false
	}
	accept, ok := callback.As[func(T) bool](s.filter)
	if !ok {
		return nil, false
	}
	d := s.delivery
	return func(payload any) (bool, error) {
		v, _ := payload.(T)
		if !accept(v) {
			return false, nil
		}
		return true, d.deliver(func() { act(v) })
	}, true
}

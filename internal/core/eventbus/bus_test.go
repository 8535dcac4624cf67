package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-messenger/internal/core/dispatch"
	"github.com/dep2p/go-messenger/internal/core/lifetime"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

// ============================================================================
// 接口契约测试
// ============================================================================

func TestBus_ImplementsPruner(t *testing.T) {
	var _ pkgif.Pruner = (*Bus)(nil)
	var _ pkgif.Pruner = (*Typed[int])(nil)
	var _ pkgif.UIDispatcher = (*dispatch.Loop)(nil)
	var _ pkgif.WorkerPool = (*dispatch.Pool)(nil)
}

// ============================================================================
// 基础功能测试
// ============================================================================

func TestBus_ZeroValueUsable(t *testing.T) {
	var b Bus

	var calls int
	_, err := b.Subscribe(func() { calls++ })
	require.NoError(t, err)

	b.Publish()
	assert.Equal(t, 1, calls)
}

// TestBus_ReverseOrderDelivery 测试同步订阅者按逆序各收到一次
func TestBus_ReverseOrderDelivery(t *testing.T) {
	b := New(WithName("layout"))
	assert.Equal(t, "layout", b.Name())

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		_, err := b.Subscribe(func() { order = append(order, i) })
		require.NoError(t, err)
	}

	b.Publish()
	assert.Equal(t, []int{3, 2, 1}, order)

	b.Publish()
	assert.Equal(t, []int{3, 2, 1, 3, 2, 1}, order)
}

func TestBus_TokenLifecycle(t *testing.T) {
	b := New()

	var calls int
	tok, err := b.Subscribe(func() { calls++ })
	require.NoError(t, err)
	assert.False(t, tok.IsZero())
	assert.True(t, b.Contains(tok))
	assert.Equal(t, 1, b.Len())

	assert.True(t, b.Unsubscribe(tok))
	assert.False(t, b.Contains(tok))
	assert.False(t, b.Unsubscribe(tok), "second unsubscribe is a no-op")
	assert.False(t, b.Unsubscribe(NewToken()))

	b.Publish()
	assert.Equal(t, 0, calls)
}

func TestBus_TokensAreUnique(t *testing.T) {
	b := New()
	seen := map[Token]bool{}
	for i := 0; i < 100; i++ {
		tok, err := b.Subscribe(func() {})
		require.NoError(t, err)
		require.False(t, seen[tok])
		seen[tok] = true
	}
}

func handleRefresh() {}

// TestBus_SubscribeUnsubscribeRoundTrip 测试按回调订阅后立即取消
func TestBus_SubscribeUnsubscribeRoundTrip(t *testing.T) {
	b := New()

	var calls int
	cb := func() { calls++ }

	_, err := b.Subscribe(cb)
	require.NoError(t, err)
	assert.True(t, b.ContainsAction(cb))

	assert.True(t, b.UnsubscribeAction(cb))
	assert.False(t, b.ContainsAction(cb))

	b.Publish()
	assert.Equal(t, 0, calls)

	assert.False(t, b.UnsubscribeAction(cb))
	assert.False(t, b.UnsubscribeAction(nil))
	assert.False(t, b.ContainsAction(nil))
}

func TestBus_UnsubscribeActionRemovesFirstMatchOnly(t *testing.T) {
	b := New()

	_, err := b.Subscribe(handleRefresh)
	require.NoError(t, err)
	_, err = b.Subscribe(handleRefresh)
	require.NoError(t, err)

	assert.True(t, b.UnsubscribeAction(handleRefresh))
	assert.True(t, b.ContainsAction(handleRefresh))
	assert.Equal(t, 1, b.Len())
}

type windowView struct {
	refreshed int
}

func (v *windowView) OnRefresh() { v.refreshed++ }

// TestBus_UnsubscribeActionMatchesReceiver 测试无所有者时只取消同一接收者的方法
func TestBus_UnsubscribeActionMatchesReceiver(t *testing.T) {
	b := New()
	subscribed, stranger := &windowView{}, &windowView{}

	_, err := b.Subscribe(subscribed.OnRefresh, KeepAlive())
	require.NoError(t, err)

	assert.False(t, b.ContainsAction(stranger.OnRefresh, KeepAlive()))
	assert.False(t, b.UnsubscribeAction(stranger.OnRefresh, KeepAlive()))
	assert.Equal(t, 1, b.Len())

	b.Publish()
	assert.Equal(t, 1, subscribed.refreshed)
	assert.Equal(t, 0, stranger.refreshed)

	assert.True(t, b.UnsubscribeAction(subscribed.OnRefresh, KeepAlive()))
	assert.Equal(t, 0, b.Len())
}

// TestBus_UnsubscribeActionMatchesOwner 测试同一方法不同实例分别取消
func TestBus_UnsubscribeActionMatchesOwner(t *testing.T) {
	b := New()
	arena := lifetime.NewArena()
	v1, v2 := &windowView{}, &windowView{}
	h1, h2 := arena.Acquire(), arena.Acquire()

	_, err := b.Subscribe(v1.OnRefresh, WithOwner(h1))
	require.NoError(t, err)
	_, err = b.Subscribe(v2.OnRefresh, WithOwner(h2))
	require.NoError(t, err)

	assert.True(t, b.UnsubscribeAction(v2.OnRefresh, WithOwner(h2)))
	assert.True(t, b.ContainsAction(v1.OnRefresh, WithOwner(h1)))
	assert.False(t, b.ContainsAction(v2.OnRefresh, WithOwner(h2)))

	b.Publish()
	assert.Equal(t, 1, v1.refreshed)
	assert.Equal(t, 0, v2.refreshed)
}

// ============================================================================
// 弱订阅与清理
// ============================================================================

// TestBus_DeadOwnerPrunedOnPublish 测试所有者释放后订阅在下一次发布时被移除
func TestBus_DeadOwnerPrunedOnPublish(t *testing.T) {
	b := New()
	arena := lifetime.NewArena()
	owner := arena.Acquire()
	v := &windowView{}

	tok, err := b.Subscribe(v.OnRefresh, WithOwner(owner))
	require.NoError(t, err)

	b.Publish()
	assert.Equal(t, 1, v.refreshed)

	require.NoError(t, arena.Release(owner))
	assert.True(t, b.Contains(tok), "still present before the next publish")

	b.Publish()
	assert.Equal(t, 1, v.refreshed)
	assert.False(t, b.Contains(tok))
	assert.Equal(t, 0, b.Len())
}

func TestBus_PruneWithoutPublish(t *testing.T) {
	b := New()
	arena := lifetime.NewArena()
	owner := arena.Acquire()

	dead, err := b.Subscribe(func() {}, WithOwner(owner))
	require.NoError(t, err)
	live, err := b.Subscribe(func() {})
	require.NoError(t, err)

	assert.Equal(t, 0, b.Prune())
	require.NoError(t, arena.Release(owner))
	assert.True(t, b.Contains(dead))

	assert.Equal(t, 1, b.Prune())
	assert.False(t, b.Contains(dead))
	assert.True(t, b.Contains(live))
}

func TestBus_KeepAliveSurvivesRelease(t *testing.T) {
	b := New()
	arena := lifetime.NewArena()
	owner := arena.Acquire()
	v := &windowView{}

	tok, err := b.Subscribe(v.OnRefresh, WithOwner(owner), KeepAlive())
	require.NoError(t, err)
	require.NoError(t, arena.Release(owner))

	b.Publish()
	assert.Equal(t, 1, v.refreshed)
	assert.True(t, b.Contains(tok))
}

// ============================================================================
// 订阅错误
// ============================================================================

// TestBus_NoUIContextAtSubscribe 测试没有 UI 上下文时订阅即失败
func TestBus_NoUIContextAtSubscribe(t *testing.T) {
	b := New()

	tok, err := b.Subscribe(func() {}, WithPolicy(pkgif.PolicyUI))
	assert.ErrorIs(t, err, ErrNoUIContext)
	assert.True(t, tok.IsZero())
	assert.Equal(t, 0, b.Len())
}

func TestBus_SubscribeErrors(t *testing.T) {
	b := New()

	_, err := b.Subscribe(nil)
	assert.ErrorIs(t, err, ErrInvalidCallback)

	_, err = b.Subscribe(func() {}, WithPolicy(pkgif.PolicyBackground))
	assert.ErrorIs(t, err, ErrNoWorkerPool)

	_, err = b.Subscribe(func() {}, WithPolicy(pkgif.DispatchPolicy(42)))
	assert.ErrorIs(t, err, ErrUnknownPolicy)

	_, err = b.Subscribe(func() {}, WithFilter(func(int) bool { return true }))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	assert.Equal(t, 0, b.Len())
}

// TestBus_RegisterSubscription 测试直接注册订阅对象
func TestBus_RegisterSubscription(t *testing.T) {
	b := New()

	var calls int
	sub, err := NewSubscription(mustRef(t, func() { calls++ }), nil)
	require.NoError(t, err)

	tok := b.Register(sub)
	assert.Equal(t, tok, sub.Token())
	assert.Equal(t, pkgif.PolicyInline, sub.Policy())

	b.Publish()
	assert.Equal(t, 1, calls)
}

// ============================================================================
// 投递策略
// ============================================================================

// TestBus_UIAndInlineInterleaved 测试 UI 订阅不影响发布者
func TestBus_UIAndInlineInterleaved(t *testing.T) {
	loop := dispatch.NewLoop(8)
	b := New(WithUI(loop))

	var order []string
	_, err := b.Subscribe(func() { order = append(order, "inline-1") })
	require.NoError(t, err)
	_, err = b.Subscribe(func() { order = append(order, "ui") }, WithPolicy(pkgif.PolicyUI))
	require.NoError(t, err)
	_, err = b.Subscribe(func() { order = append(order, "inline-2") })
	require.NoError(t, err)

	b.Publish()
	assert.Equal(t, []string{"inline-2", "inline-1"}, order)

	assert.Equal(t, 1, loop.Drain())
	assert.Equal(t, []string{"inline-2", "inline-1", "ui"}, order)
}

func TestBus_UIDeliveryRejected(t *testing.T) {
	loop := dispatch.NewLoop(1)
	b := New(WithUI(loop))

	var calls int
	_, err := b.Subscribe(func() { calls++ }, WithPolicy(pkgif.PolicyUI))
	require.NoError(t, err)

	loop.Close()
	assert.NotPanics(t, b.Publish)
	assert.Equal(t, 0, loop.Drain())
	assert.Equal(t, 0, calls)
}

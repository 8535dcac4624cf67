package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-messenger/internal/core/lifetime"
)

type window struct {
	Title string
}

func TestTyped_DefaultName(t *testing.T) {
	assert.Equal(t, "int", NewTyped[int]().Name())
	assert.Equal(t, "windows", NewTyped[[]window](WithName("windows")).Name())
}

// TestTyped_FilterScenario 测试过滤器决定是否投递
func TestTyped_FilterScenario(t *testing.T) {
	b := NewTyped[int]()

	var s1, s2 []int
	_, err := b.Subscribe(func(v int) { s1 = append(s1, v) })
	require.NoError(t, err)
	_, err = b.Subscribe(func(v int) { s2 = append(s2, v) }, WithFilter(func(v int) bool { return v > 10 }))
	require.NoError(t, err)

	require.NoError(t, b.Publish(5))
	assert.Equal(t, []int{5}, s1)
	assert.Empty(t, s2)

	require.NoError(t, b.Publish(20))
	assert.Equal(t, []int{5, 20}, s1)
	assert.Equal(t, []int{20}, s2)
}

func TestTyped_FilterEvaluatedOncePerPublish(t *testing.T) {
	b := NewTyped[string]()

	var evaluated, delivered int
	_, err := b.Subscribe(
		func(string) { delivered++ },
		WithFilter(func(s string) bool {
			evaluated++
			return s != "skip"
		}),
	)
	require.NoError(t, err)

	require.NoError(t, b.Publish("notepad"))
	require.NoError(t, b.Publish("skip"))
	assert.Equal(t, 2, evaluated)
	assert.Equal(t, 1, delivered)
}

func TestTyped_PayloadDelivered(t *testing.T) {
	b := NewTyped[[]window]()

	var got []window
	_, err := b.Subscribe(func(ws []window) { got = ws })
	require.NoError(t, err)

	ws := []window{{Title: "editor"}, {Title: "terminal"}}
	require.NoError(t, b.Publish(ws))
	assert.Equal(t, ws, got)
}

// TestTyped_MissingPayload 测试空载荷被拒绝
func TestTyped_MissingPayload(t *testing.T) {
	ptr := NewTyped[*window]()
	var calls int
	_, err := ptr.Subscribe(func(*window) { calls++ })
	require.NoError(t, err)

	assert.ErrorIs(t, ptr.Publish(nil), ErrMissingPayload)
	assert.Equal(t, 0, calls)
	require.NoError(t, ptr.Publish(&window{Title: "editor"}))
	assert.Equal(t, 1, calls)

	assert.ErrorIs(t, NewTyped[map[string]int]().Publish(nil), ErrMissingPayload)
	assert.ErrorIs(t, NewTyped[any]().Publish(nil), ErrMissingPayload)
	assert.NoError(t, NewTyped[[]window]().Publish(nil), "nil slice is a value")

	// 值类型的零值是合法载荷
	assert.NoError(t, NewTyped[int]().Publish(0))
	assert.NoError(t, NewTyped[window]().Publish(window{}))
}

func TestTyped_FilterShapeMismatch(t *testing.T) {
	b := NewTyped[int]()

	_, err := b.Subscribe(func(int) {}, WithFilter(func(string) bool { return true }))
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Equal(t, 0, b.Len())

	_, err = b.Subscribe(nil)
	assert.ErrorIs(t, err, ErrInvalidCallback)

	_, err = b.Subscribe(func(int) {}, WithFilter[int](nil))
	assert.ErrorIs(t, err, ErrInvalidCallback)
}

type layoutView struct {
	applied []string
}

func (v *layoutView) OnApplied(name string) { v.applied = append(v.applied, name) }
func (v *layoutView) Accepts(name string) bool { return name != "" }

// TestTyped_DeadOwnerPruned 测试所有者释放后订阅与过滤器一起失效
func TestTyped_DeadOwnerPruned(t *testing.T) {
	b := NewTyped[string]()
	arena := lifetime.NewArena()
	owner := arena.Acquire()
	v := &layoutView{}

	tok, err := b.Subscribe(v.OnApplied, WithFilter(v.Accepts), WithOwner(owner))
	require.NoError(t, err)
	assert.True(t, b.ContainsAction(v.OnApplied, WithOwner(owner)))

	require.NoError(t, b.Publish("grid"))
	require.NoError(t, arena.Release(owner))
	assert.True(t, b.Contains(tok))

	require.NoError(t, b.Publish("columns"))
	assert.Equal(t, []string{"grid"}, v.applied)
	assert.False(t, b.Contains(tok))
}

func TestTyped_UnsubscribeAction(t *testing.T) {
	b := NewTyped[string]()
	v := &layoutView{}

	_, err := b.Subscribe(v.OnApplied)
	require.NoError(t, err)
	assert.True(t, b.ContainsAction(v.OnApplied))
	assert.True(t, b.UnsubscribeAction(v.OnApplied))
	assert.False(t, b.ContainsAction(v.OnApplied))

	require.NoError(t, b.Publish("grid"))
	assert.Empty(t, v.applied)
}

func TestTyped_RegisterHandBuiltSubscription(t *testing.T) {
	b := NewTyped[int]()

	var got []int
	sub, err := NewTypedSubscription[int](
		mustRef(t, func(v int) { got = append(got, v) }),
		mustRef(t, func(v int) bool { return v%2 == 0 }),
		nil,
	)
	require.NoError(t, err)
	b.Register(sub)

	for i := 1; i <= 4; i++ {
		require.NoError(t, b.Publish(i))
	}
	assert.Equal(t, []int{2, 4}, got)
}

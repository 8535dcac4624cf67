package registry

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-messenger/internal/core/dispatch"
	"github.com/dep2p/go-messenger/internal/core/eventbus"
	"github.com/dep2p/go-messenger/internal/core/lifetime"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

type windowsEnumerated struct{ eventbus.Typed[[]string] }

type layoutApplied struct{ eventbus.Bus }

type layoutReset struct{ eventbus.Bus }

// TestGet_SameInstance 验证同一事件类总是返回同一总线
func TestGet_SameInstance(t *testing.T) {
	r := New(nil, nil)

	a := Get[layoutApplied](r)
	b := Get[layoutApplied](r)
	require.NotNil(t, a)
	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Len())
}

// TestGet_DistinctClasses 验证不同事件类返回不同总线
func TestGet_DistinctClasses(t *testing.T) {
	r := New(nil, nil)

	applied := Get[layoutApplied](r)
	reset := Get[layoutReset](r)
	windows := Get[windowsEnumerated](r)

	assert.NotSame(t, &applied.Bus, &reset.Bus)
	assert.Equal(t, 3, r.Len())
	assert.Contains(t, r.Names(), applied.Name())
	assert.Contains(t, applied.Name(), "layoutApplied")
	assert.Contains(t, windows.Name(), "windowsEnumerated")
}

func TestGet_Concurrent(t *testing.T) {
	r := New(nil, nil)

	const n = 32
	got := make([]*layoutApplied, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Get[layoutApplied](r)
		}(i)
	}
	wg.Wait()

	for _, b := range got {
		assert.Same(t, got[0], b)
	}
}

// TestGet_UIContextCapturedAtConstruction 验证 UI 上下文在注册表创建时捕获
func TestGet_UIContextCapturedAtConstruction(t *testing.T) {
	headless := New(nil, nil)
	_, err := Get[layoutApplied](headless).Subscribe(func() {}, eventbus.WithPolicy(pkgif.PolicyUI))
	assert.ErrorIs(t, err, eventbus.ErrNoUIContext)

	loop := dispatch.NewLoop(4)
	r := New(loop, nil)
	bus := Get[layoutApplied](r)
	assert.Equal(t, pkgif.UIDispatcher(loop), r.UI())
	assert.Equal(t, pkgif.UIDispatcher(loop), bus.UI())

	var fired bool
	_, err = bus.Subscribe(func() { fired = true }, eventbus.WithPolicy(pkgif.PolicyUI))
	require.NoError(t, err)

	bus.Publish()
	assert.False(t, fired, "ui delivery must wait for the loop")
	assert.Equal(t, 1, loop.Drain())
	assert.True(t, fired)
}

func TestRegistry_Prune(t *testing.T) {
	r := New(nil, nil)
	arena := lifetime.NewArena()
	owner := arena.Acquire()

	_, err := Get[layoutApplied](r).Subscribe(func() {}, eventbus.WithOwner(owner))
	require.NoError(t, err)
	_, err = Get[windowsEnumerated](r).Subscribe(func([]string) {}, eventbus.WithOwner(owner))
	require.NoError(t, err)
	_, err = Get[layoutReset](r).Subscribe(func() {})
	require.NoError(t, err)

	assert.Equal(t, 0, r.Prune())
	require.NoError(t, arena.Release(owner))
	assert.Equal(t, 2, r.Prune())
	assert.Equal(t, 0, Get[layoutApplied](r).Len())
	assert.Equal(t, 1, Get[layoutReset](r).Len())
}

// TestGet_SameShortNameDistinctLabels 验证同名事件类得到不同的总线名称
func TestGet_SameShortNameDistinctLabels(t *testing.T) {
	r := New(nil, nil)

	first := func() EventClass {
		type changed struct{ eventbus.Bus }
		return Get[changed](r)
	}()
	second := func() EventClass {
		type changed struct{ eventbus.Typed[int] }
		return Get[changed](r)
	}()

	require.NotSame(t, first, second)
	assert.NotEqual(t, first.Name(), second.Name())
	assert.Contains(t, first.Name(), "go-messenger/internal/core/registry.changed")
	assert.Len(t, r.Names(), 2)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector(r, "m")))
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Len(t, families[0].GetMetric(), 2)
}

func TestCollector(t *testing.T) {
	r := New(nil, nil)
	_, err := Get[layoutApplied](r).Subscribe(func() {})
	require.NoError(t, err)
	_, err = Get[layoutApplied](r).Subscribe(func() {}, eventbus.KeepAlive())
	require.NoError(t, err)
	Get[layoutReset](r)

	c := NewCollector(r, "test")
	assert.Equal(t, 2, testutil.CollectAndCount(c, "test_eventbus_subscribers"))

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)

	values := map[string]float64{}
	for _, m := range families[0].GetMetric() {
		values[m.GetLabel()[0].GetValue()] = m.GetGauge().GetValue()
	}
	assert.Equal(t, float64(2), values[Get[layoutApplied](r).Name()])
	assert.Equal(t, float64(0), values[Get[layoutReset](r).Name()])
}

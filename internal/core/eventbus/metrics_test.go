package eventbus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-messenger/internal/core/dispatch"
	"github.com/dep2p/go-messenger/internal/core/lifetime"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.Nil(t, m.Collectors())
	assert.NotPanics(t, func() {
		m.observePublish("bus")
		m.observeDelivery("bus", pkgif.PolicyInline, nil)
		m.observePruned("bus", 3)
	})
}

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("messenger")
	require.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg), "duplicate registration")
}

// TestMetrics_PublishDeliverPrune 测试发布、投递和清理计数
func TestMetrics_PublishDeliverPrune(t *testing.T) {
	m := NewMetrics("messenger")
	b := NewTyped[int](WithName("windows"), WithMetrics(m))
	arena := lifetime.NewArena()
	owner := arena.Acquire()

	_, err := b.Subscribe(func(int) {})
	require.NoError(t, err)
	_, err = b.Subscribe(func(int) {}, WithFilter(func(v int) bool { return v > 10 }))
	require.NoError(t, err)
	_, err = b.Subscribe(func(int) {}, WithOwner(owner))
	require.NoError(t, err)
	require.NoError(t, arena.Release(owner))

	require.NoError(t, b.Publish(5))
	require.NoError(t, b.Publish(20))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.published.WithLabelValues("windows")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.delivered.WithLabelValues("windows", "inline")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pruned.WithLabelValues("windows")))
}

// TestMetrics_DroppedWhenPoolStopped 测试工作池拒绝时记录丢弃
func TestMetrics_DroppedWhenPoolStopped(t *testing.T) {
	m := NewMetrics("messenger")
	pool := dispatch.NewPool()
	b := New(WithName("layout"), WithPool(pool), WithMetrics(m))

	var calls int
	_, err := b.Subscribe(func() { calls++ }, WithPolicy(pkgif.PolicyBackground))
	require.NoError(t, err)

	assert.NotPanics(t, b.Publish)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped.WithLabelValues("layout", "background")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.delivered.WithLabelValues("layout", "background")))
}

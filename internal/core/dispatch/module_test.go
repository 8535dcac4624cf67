package dispatch

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-messenger/config"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

func TestModule_PoolLifecycle(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Dispatch.Workers = 2

	var pool *Pool
	var wp pkgif.WorkerPool
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&pool, &wp),
	)

	assert.False(t, pool.Running())
	app.RequireStart()
	assert.True(t, pool.Running())
	assert.Same(t, pool, wp)

	var ran atomic.Bool
	require.NoError(t, wp.Submit(func() { ran.Store(true) }))
	assert.Eventually(t, ran.Load, time.Second, 5*time.Millisecond)

	app.RequireStop()
	assert.False(t, pool.Running())
	assert.ErrorIs(t, wp.Submit(func() {}), ErrNotRunning)
}

func TestUIModule_ClosesLoopOnStop(t *testing.T) {
	var loop *Loop
	var ui pkgif.UIDispatcher
	app := fxtest.New(t,
		Module,
		UIModule,
		fx.Populate(&loop, &ui),
	)
	app.RequireStart()

	require.NoError(t, ui.Post(func() {}))
	assert.Equal(t, 1, loop.Pending())
	assert.Equal(t, config.DefaultUIConfig().QueueSize, cap(loop.queue))

	app.RequireStop()
	select {
	case <-loop.Done():
	default:
		t.Fatal("loop not closed on stop")
	}
	assert.ErrorIs(t, ui.Post(func() {}), ErrClosed)
}

func TestModule_Collector(t *testing.T) {
	reg := prometheus.NewRegistry()

	var pool *Pool
	app := fxtest.New(t,
		fx.Supply(config.NewConfig(), reg),
		Module,
		UIModule,
		fx.Populate(&pool),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NoError(t, pool.Submit(func() {}))

	// background + ui，每个 4 个 outcome 和 1 个 pending
	count, err := testutil.GatherAndCount(reg, "messenger_dispatch_tasks_total", "messenger_dispatch_pending")
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

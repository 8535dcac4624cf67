package dispatch

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-messenger/config"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Module 后台工作池模块
//
// 提供 *Pool 及其 pkgif.WorkerPool 形式，启动时启动工作者，停止时在
// shutdown_timeout 内等待已入队任务完成。
var Module = fx.Module("dispatch",
	fx.Provide(
		NewPoolFromParams,
		func(p *Pool) pkgif.WorkerPool { return p },
	),
	fx.Invoke(registerPoolLifecycle, registerCollector),
)

// UIModule UI 执行上下文模块
//
// 提供 *Loop 及其 pkgif.UIDispatcher 形式。宿主程序负责在 UI goroutine 上
// 调用 Run 或 Drain；停止时关闭 Loop。不加载该模块时 PolicyUI 订阅返回
// ErrNoUIContext。
var UIModule = fx.Module("dispatch-ui",
	fx.Provide(
		NewLoopFromParams,
		func(l *Loop) pkgif.UIDispatcher { return l },
	),
	fx.Invoke(registerLoopLifecycle),
)

// Params 工作池依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

func unified(cfg *config.Config) *config.Config {
	if cfg == nil {
		return config.NewConfig()
	}
	return cfg
}

// NewPoolFromParams 从 Fx 参数创建工作池
func NewPoolFromParams(p Params) *Pool {
	cfg := unified(p.UnifiedCfg).Dispatch
	return NewPool(WithWorkers(cfg.Workers), WithQueueSize(cfg.QueueSize))
}

// NewLoopFromParams 从 Fx 参数创建 UI 执行上下文
func NewLoopFromParams(p Params) *Loop {
	return NewLoop(unified(p.UnifiedCfg).UI.QueueSize)
}

type poolLifecycleInput struct {
	fx.In

	LC         fx.Lifecycle
	Pool       *Pool
	UnifiedCfg *config.Config `optional:"true"`
}

func registerPoolLifecycle(in poolLifecycleInput) {
	timeout := unified(in.UnifiedCfg).Dispatch.ShutdownTimeout.Duration()

	in.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return in.Pool.Start()
		},
		OnStop: func(ctx context.Context) error {
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			if err := in.Pool.Stop(ctx); err != nil {
				logger.Warn("后台工作池未能在超时内排空", "pending", in.Pool.Pending(), "err", err)
				return err
			}
			return nil
		},
	})
}

type loopLifecycleInput struct {
	fx.In

	LC   fx.Lifecycle
	Loop *Loop
}

func registerLoopLifecycle(in loopLifecycleInput) {
	in.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			in.Loop.Close()
			return nil
		},
	})
}

type collectorInput struct {
	fx.In

	Pool       *Pool
	Loop       *Loop                `optional:"true"`
	Prometheus *prometheus.Registry `optional:"true"`
	UnifiedCfg *config.Config       `optional:"true"`
}

func registerCollector(in collectorInput) error {
	if in.Prometheus == nil || in.UnifiedCfg == nil || !in.UnifiedCfg.Metrics.Enabled {
		return nil
	}
	return in.Prometheus.Register(NewCollector(in.UnifiedCfg.Metrics.Namespace, in.Pool, in.Loop))
}

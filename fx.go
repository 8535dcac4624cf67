package messenger

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-messenger/config"
	"github.com/dep2p/go-messenger/internal/core/dispatch"
	"github.com/dep2p/go-messenger/internal/core/eventbus"
	"github.com/dep2p/go-messenger/internal/core/lifecycle"
	"github.com/dep2p/go-messenger/internal/core/namedevent"
	"github.com/dep2p/go-messenger/internal/core/registry"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
	"github.com/dep2p/go-messenger/pkg/lib/log"
)

var fxLogger = log.Logger("messenger/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置、时钟、Prometheus 注册表
//  2. 生命周期协调器、事件总线指标
//  3. 后台工作池、UI 执行上下文（宿主提供时跳过内置实现）
//  4. 注册表、具名事件管理器、周期性清理
//  5. 用户扩展、组件注入、运行阶段钩子
func buildFxApp(cfg *config.Config, o *options, m *Messenger) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 基础设施
	// ════════════════════════════════════════════════════════════════════════
	clk := o.clock
	if clk == nil {
		clk = clock.New()
	}

	prom := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		prom.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: cfg.Metrics.Namespace}),
		)
	}

	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Supply(prom),
		fx.Provide(func() clock.Clock { return clk }),

		lifecycle.Module(),
		eventbus.Module(),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 投递设施
	// ════════════════════════════════════════════════════════════════════════
	if o.pool != nil {
		modules = append(modules, fx.Provide(func() pkgif.WorkerPool { return o.pool }))
	} else {
		modules = append(modules,
			dispatch.Module,
			fx.Invoke(markDispatchReady),
		)
	}

	switch {
	case o.ui != nil:
		modules = append(modules, fx.Provide(func() pkgif.UIDispatcher { return o.ui }))
	case cfg.UI.Enabled:
		modules = append(modules, dispatch.UIModule)
	default:
		fxLogger.Debug("未创建 UI 执行上下文")
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 注册表与具名事件
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		registry.Module,
		namedevent.Module,
	)

	// ════════════════════════════════════════════════════════════════════════
	// 4. 用户扩展与注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, o.userFxOptions...)
	modules = append(modules,
		fx.Invoke(injectComponents(m)),
		lifecycle.Hooks(),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 5. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.WithLogger(fxEventLogger(cfg.Debug)))

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// fxEventLogger 调试模式下输出 fx 容器日志，否则丢弃
func fxEventLogger(debug bool) func() fxevent.Logger {
	return func() fxevent.Logger {
		if !debug {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}
		zl, err := zap.NewDevelopment()
		if err != nil {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}
		return &fxevent.ZapLogger{Logger: zl.Named("fx")}
	}
}

// markDispatchReady 在内置工作池启动后推进生命周期阶段
func markDispatchReady(lc fx.Lifecycle, c *lifecycle.Coordinator, _ *dispatch.Pool) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return c.AdvanceTo(lifecycle.PhaseDispatchReady)
		},
	})
}

// ════════════════════════════════════════════════════════════════════════════
// 组件注入
// ════════════════════════════════════════════════════════════════════════════

// injectParams Messenger 组件注入参数
type injectParams struct {
	fx.In

	Registry    *registry.Registry
	Named       *namedevent.Manager
	Pool        pkgif.WorkerPool
	Coordinator *lifecycle.Coordinator
	Prometheus  *prometheus.Registry

	// 可选组件
	UI   pkgif.UIDispatcher `optional:"true"`
	Loop *dispatch.Loop     `optional:"true"`
}

// injectComponents 创建 Messenger 组件注入函数
func injectComponents(m *Messenger) interface{} {
	return func(p injectParams) {
		m.registry = p.Registry
		m.named = p.Named
		m.pool = p.Pool
		m.coordinator = p.Coordinator
		m.prometheus = p.Prometheus
		m.ui = p.UI
		m.loop = p.Loop
	}
}

package registry

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-messenger/config"
	"github.com/dep2p/go-messenger/internal/core/eventbus"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

// Module 注册表模块
//
// 提供 *Registry（同时加入 "pruners" 组），并按配置启动 Housekeeper。
var Module = fx.Module("registry",
	fx.Provide(NewFromParams),
	fx.Invoke(registerLifecycle),
)

// Params 注册表依赖参数
type Params struct {
	fx.In

	Pool       pkgif.WorkerPool
	UI         pkgif.UIDispatcher   `optional:"true"`
	Metrics    *eventbus.Metrics    `optional:"true"`
	Prometheus *prometheus.Registry `optional:"true"`
	UnifiedCfg *config.Config       `optional:"true"`
}

// Result 注册表导出结果
type Result struct {
	fx.Out

	Registry *Registry
	Pruner   pkgif.Pruner `group:"pruners"`
}

// NewFromParams 从 Fx 参数创建注册表
func NewFromParams(p Params) (Result, error) {
	r := New(p.UI, p.Pool, WithMetrics(p.Metrics))

	if p.Prometheus != nil && p.UnifiedCfg != nil && p.UnifiedCfg.Metrics.Enabled {
		if err := p.Prometheus.Register(NewCollector(r, p.UnifiedCfg.Metrics.Namespace)); err != nil {
			return Result{}, err
		}
	}

	return Result{Registry: r, Pruner: r}, nil
}

type lifecycleInput struct {
	fx.In

	LC         fx.Lifecycle
	Clock      clock.Clock    `optional:"true"`
	UnifiedCfg *config.Config `optional:"true"`
	Pruners    []pkgif.Pruner `group:"pruners"`
}

func registerLifecycle(in lifecycleInput) {
	cfg := in.UnifiedCfg
	if cfg == nil {
		cfg = config.NewConfig()
	}

	h := NewHousekeeper(in.Clock, cfg.Housekeeping.PruneInterval.Duration(), in.Pruners...)
	in.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			h.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			h.Stop()
			return nil
		},
	})
}

package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-messenger/config"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Module 返回 Fx 模块
//
// 提供 *Metrics；指标关闭或没有 Prometheus 注册表时提供 nil（所有方法对 nil 安全）。
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideMetrics),
	)
}

// metricsInput 指标依赖参数
type metricsInput struct {
	fx.In

	Prometheus *prometheus.Registry `optional:"true"`
	UnifiedCfg *config.Config       `optional:"true"`
}

// ProvideMetrics 提供事件总线指标
func ProvideMetrics(in metricsInput) (*Metrics, error) {
	if in.Prometheus == nil || in.UnifiedCfg == nil || !in.UnifiedCfg.Metrics.Enabled {
		return nil, nil
	}

	m := NewMetrics(in.UnifiedCfg.Metrics.Namespace)
	if err := m.Register(in.Prometheus); err != nil {
		return nil, err
	}
	return m, nil
}

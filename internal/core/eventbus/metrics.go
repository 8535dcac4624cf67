package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"

	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

// Metrics 事件总线指标
//
// 所有方法对 nil 接收者安全。
type Metrics struct {
	published *prometheus.CounterVec
	delivered *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	pruned    *prometheus.CounterVec
}

// NewMetrics 创建指标（未注册）
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "published_total",
			Help:      "Publish calls per bus.",
		}, []string{"bus"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "delivered_total",
			Help:      "Callbacks handed to their dispatch policy.",
		}, []string{"bus", "policy"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "dropped_total",
			Help:      "Deliveries rejected by the worker pool or ui context.",
		}, []string{"bus", "policy"}),
		pruned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "pruned_total",
			Help:      "Subscriptions removed because their callback no longer resolves.",
		}, []string{"bus"}),
	}
}

// Collectors 返回全部 collector
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{m.published, m.delivered, m.dropped, m.pruned}
}

// Register 注册到 reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observePublish(bus string) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(bus).Inc()
}

func (m *Metrics) observeDelivery(bus string, p pkgif.DispatchPolicy, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.dropped.WithLabelValues(bus, p.String()).Inc()
		return
	}
	m.delivered.WithLabelValues(bus, p.String()).Inc()
}

func (m *Metrics) observePruned(bus string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.pruned.WithLabelValues(bus).Add(float64(n))
}

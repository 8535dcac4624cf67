package registry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector 以 gauge 形式导出每个总线的订阅数
type Collector struct {
	r    *Registry
	desc *prometheus.Desc
}

// NewCollector 创建订阅数 collector
func NewCollector(r *Registry, namespace string) *Collector {
	return &Collector{
		r: r,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "eventbus", "subscribers"),
			"Subscriptions currently held by each bus, including ones not yet pruned.",
			[]string{"bus"}, nil,
		),
	}
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, b := range c.r.snapshot() {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(b.Len()), b.Name())
	}
}

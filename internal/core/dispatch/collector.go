package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// statsSource 可导出统计的执行设施
type statsSource interface {
	Stats() Stats
	Pending() int
}

// Collector 导出工作池和 UI 上下文的执行统计
type Collector struct {
	sources map[string]statsSource

	tasks   *prometheus.Desc
	pending *prometheus.Desc
}

// NewCollector 创建执行统计 collector，loop 可为空
func NewCollector(namespace string, pool *Pool, loop *Loop) *Collector {
	sources := map[string]statsSource{}
	if pool != nil {
		sources["background"] = pool
	}
	if loop != nil {
		sources["ui"] = loop
	}
	return &Collector{
		sources: sources,
		tasks: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "dispatch", "tasks_total"),
			"Tasks seen by each executor, by outcome.",
			[]string{"executor", "outcome"}, nil,
		),
		pending: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "dispatch", "pending"),
			"Tasks queued and not yet executed.",
			[]string{"executor"}, nil,
		),
	}
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.tasks
	ch <- c.pending
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for name, src := range c.sources {
		s := src.Stats()
		for outcome, v := range map[string]uint64{
			"accepted": s.Accepted,
			"rejected": s.Rejected,
			"executed": s.Executed,
			"panicked": s.Panicked,
		} {
			ch <- prometheus.MustNewConstMetric(c.tasks, prometheus.CounterValue, float64(v), name, outcome)
		}
		ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(src.Pending()), name)
	}
}

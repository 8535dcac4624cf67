// Package registry 实现事件注册表
//
// 每个事件类（嵌入 eventbus.Bus 或 eventbus.Typed[T] 的类型）在注册表的
// 生命周期内只有一个总线实例，首次 Get 时创建，之后不会移除。
//
// 注册表在创建时捕获 UI 执行上下文，所有总线共享这一个上下文。
// 注册表的 mu 只保护类型映射，与各总线自己的锁相互独立。
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/dep2p/go-messenger/internal/core/eventbus"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
	"github.com/dep2p/go-messenger/pkg/lib/log"
)

var logger = log.Logger("core/registry")

// EventClass 可由注册表管理的事件类
//
// 嵌入 eventbus.Bus 或 eventbus.Typed[T] 的结构体指针自动满足该接口。
type EventClass interface {
	Init(env eventbus.Env)
	Name() string
	Len() int
	Prune() int
}

// Registry 事件注册表
type Registry struct {
	mu    sync.Mutex
	buses map[reflect.Type]EventClass
	names map[string]int

	ui      pkgif.UIDispatcher
	pool    pkgif.WorkerPool
	metrics *eventbus.Metrics
}

// Option 注册表选项
type Option func(*Registry)

// WithMetrics 为所有总线设置指标
func WithMetrics(m *eventbus.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// New 创建注册表
//
// ui 为 nil 时所有总线都没有 UI 上下文，PolicyUI 订阅返回 ErrNoUIContext。
func New(ui pkgif.UIDispatcher, pool pkgif.WorkerPool, opts ...Option) *Registry {
	r := &Registry{
		buses: make(map[reflect.Type]EventClass),
		names: make(map[string]int),
		ui:    ui,
		pool:  pool,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get 返回事件类 E 的总线，不存在时创建
//
//	type WindowsEnumerated struct{ eventbus.Typed[[]Window] }
//
//	bus := registry.Get[WindowsEnumerated](r)
//	bus.Subscribe(func(ws []Window) { ... })
func Get[E any, PE interface {
	*E
	EventClass
}](r *Registry) PE {
	typ := reflect.TypeFor[E]()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.buses[typ]; ok {
		return existing.(PE)
	}

	name := r.uniqueName(typ)
	bus := PE(new(E))
	bus.Init(eventbus.Env{
		Name:    name,
		UI:      r.ui,
		Pool:    r.pool,
		Metrics: r.metrics,
	})
	r.buses[typ] = bus

	logger.Debug("事件总线已创建", "event", name)
	return bus
}

// uniqueName 在 mu 下为事件类分配总线名称
//
// 名称带完整导入路径；同名的局部类型依次加 "#2"、"#3" 后缀，
// 保证指标的 bus 标签不重复。
func (r *Registry) uniqueName(typ reflect.Type) string {
	name := typ.String()
	if typ.PkgPath() != "" && typ.Name() != "" {
		name = typ.PkgPath() + "." + typ.Name()
	}
	r.names[name]++
	if n := r.names[name]; n > 1 {
		name = fmt.Sprintf("%s#%d", name, n)
	}
	return name
}

// snapshot 复制当前总线列表，调用方在不持有 mu 的情况下访问总线
func (r *Registry) snapshot() []EventClass {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]EventClass, 0, len(r.buses))
	for _, b := range r.buses {
		out = append(out, b)
	}
	return out
}

// Prune 清理所有总线上的失效订阅，返回移除总数
func (r *Registry) Prune() int {
	total := 0
	for _, b := range r.snapshot() {
		total += b.Prune()
	}
	return total
}

// Len 已创建的总线数量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buses)
}

// Names 已创建总线的名称（排序）
func (r *Registry) Names() []string {
	buses := r.snapshot()
	names := make([]string, 0, len(buses))
	for _, b := range buses {
		names = append(names, b.Name())
	}
	sort.Strings(names)
	return names
}

// UI 注册表捕获的 UI 执行上下文
func (r *Registry) UI() pkgif.UIDispatcher {
	return r.ui
}

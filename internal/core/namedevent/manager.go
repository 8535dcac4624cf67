// Package namedevent 实现按名称注册的弱事件管理器
//
// 与 eventbus 按事件类型区分总线不同，Manager 用字符串事件名区分，
// 一个 Manager 实例可以承载许多形状各异的处理函数，适合"添加/移除处理函数"
// 风格的事件接线。处理函数以弱引用保存，所有者句柄释放后在下一次 Handle
// 或 Cleanup 时被永久移除。
package namedevent

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-messenger/internal/core/callback"
	"github.com/dep2p/go-messenger/internal/core/lifetime"
	"github.com/dep2p/go-messenger/pkg/lib/log"
)

var logger = log.Logger("core/namedevent")

var errorType = reflect.TypeFor[error]()

// Manager 按名称注册的弱事件管理器
//
// 零值可用，并发安全。
type Manager struct {
	mu       sync.Mutex
	handlers map[string][]*callback.Reference
}

// New 创建管理器
func New() *Manager {
	return &Manager{handlers: make(map[string][]*callback.Reference)}
}

func validate(name string, handler any) error {
	if handler == nil {
		return ErrMissingCallback
	}
	if v := reflect.ValueOf(handler); v.Kind() == reflect.Func && v.IsNil() {
		return ErrMissingCallback
	}
	if strings.TrimSpace(name) == "" {
		return ErrMissingName
	}
	return nil
}

// Add 为事件 name 添加处理函数
//
// handler 可以是任意函数，调用 Handle 时参数个数和类型必须与之匹配。
// owner 为零值时处理函数始终存活。
func (m *Manager) Add(name string, handler any, owner lifetime.Handle) error {
	if err := validate(name, handler); err != nil {
		return err
	}
	ref, err := callback.Bind(owner, handler, false)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMissingCallback, err)
	}

	m.mu.Lock()
	if m.handlers == nil {
		m.handlers = make(map[string][]*callback.Reference)
	}
	m.handlers[name] = append(m.handlers[name], ref)
	n := len(m.handlers[name])
	m.mu.Unlock()

	logger.Debug("处理函数已添加", "event", name, "handler", ref, "handlers", n)
	return nil
}

// Remove 移除事件 name 下第一个匹配的处理函数
//
// 不存在时什么也不做。owner 需要与 Add 时相同。
func (m *Manager) Remove(name string, handler any, owner lifetime.Handle) error {
	if err := validate(name, handler); err != nil {
		return err
	}
	probe, err := callback.Bind(owner, handler, true)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMissingCallback, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.handlers[name]
	i := slices.IndexFunc(list, func(r *callback.Reference) bool { return r.Equals(probe) })
	if i < 0 {
		return nil
	}
	m.store(name, slices.Delete(list, i, i+1))
	logger.Debug("处理函数已移除", "event", name, "handler", probe)
	return nil
}

// store 在 mu 下保存列表，空列表删除键
func (m *Manager) store(name string, list []*callback.Reference) {
	if len(list) == 0 {
		delete(m.handlers, name)
		return
	}
	m.handlers[name] = list
}

// ============================================================================
// 触发
// ============================================================================

// Handle 以无参数形式触发事件
func (m *Manager) Handle(name string) error {
	return m.invoke(name)
}

// HandleWith 以单个载荷参数触发事件
func (m *Manager) HandleWith(name string, payload any) error {
	return m.invoke(name, payload)
}

// HandleFrom 以发送者和载荷两个参数触发事件
func (m *Manager) HandleFrom(name string, sender, payload any) error {
	return m.invoke(name, sender, payload)
}

// snapshot 在 mu 下收集存活的处理函数并移除失效的
func (m *Manager) snapshot(name string) []*callback.Reference {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.handlers[name]
	if len(list) == 0 {
		return nil
	}
	live := make([]*callback.Reference, 0, len(list))
	for _, r := range list {
		if r.Alive() {
			live = append(live, r)
		}
	}
	if pruned := len(list) - len(live); pruned > 0 {
		logger.Debug("触发时清理失效处理函数", "event", name, "pruned", pruned)
	}
	m.store(name, slices.Clone(live))
	return live
}

// invoke 在锁外按添加顺序调用处理函数
//
// 形状不匹配的处理函数返回 *InvalidHandleEventError，不影响其他处理函数的调用；
// 处理函数返回的非 nil error 也会被收集。panic 会传播给调用者。
func (m *Manager) invoke(name string, args ...any) error {
	var errs error
	for _, ref := range m.snapshot(name) {
		fn, ok := ref.Resolve()
		if !ok {
			continue
		}
		errs = multierr.Append(errs, call(name, fn, args))
	}
	return errs
}

func call(name string, fn any, args []any) error {
	rv := reflect.ValueOf(fn)
	ft := rv.Type()

	in, ok := arguments(ft, args)
	if !ok {
		got := make([]string, len(args))
		for i, a := range args {
			got[i] = fmt.Sprintf("%T", a)
		}
		return &InvalidHandleEventError{Name: name, Handler: ft.String(), Args: got}
	}

	out := rv.Call(in)
	if n := len(out); n > 0 && ft.Out(n-1) == errorType && !out[n-1].IsNil() {
		return fmt.Errorf("event %q: %w", name, out[n-1].Interface().(error))
	}
	return nil
}

// arguments 按处理函数的形状转换参数
func arguments(ft reflect.Type, args []any) ([]reflect.Value, bool) {
	if ft.IsVariadic() || ft.NumIn() != len(args) {
		return nil, false
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		want := ft.In(i)
		if a == nil {
			if !nillable(want) {
				return nil, false
			}
			in[i] = reflect.Zero(want)
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(want) {
			return nil, false
		}
		in[i] = v
	}
	return in, true
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

// ============================================================================
// 清理与查询
// ============================================================================

// Cleanup 移除事件 name 下已失效的处理函数，返回移除数量
func (m *Manager) Cleanup(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanup(name)
}

func (m *Manager) cleanup(name string) int {
	list := m.handlers[name]
	before := len(list)
	list = slices.DeleteFunc(list, func(r *callback.Reference) bool { return !r.Alive() })
	m.store(name, list)
	return before - len(list)
}

// Prune 清理所有事件的失效处理函数，返回移除数量
func (m *Manager) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for name := range m.handlers {
		n += m.cleanup(name)
	}
	if n > 0 {
		logger.Debug("已清理失效处理函数", "pruned", n)
	}
	return n
}

// Len 事件 name 下的处理函数数（含尚未清理的失效项）
func (m *Manager) Len(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers[name])
}

// Names 返回有处理函数的事件名，按字典序
func (m *Manager) Names() []string {
	m.mu.Lock()
	names := make([]string, 0, len(m.handlers))
	for name := range m.handlers {
		names = append(names, name)
	}
	m.mu.Unlock()

	sort.Strings(names)
	return names
}

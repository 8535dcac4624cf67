package messenger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-messenger/config"
	"github.com/dep2p/go-messenger/internal/core/dispatch"
	"github.com/dep2p/go-messenger/internal/core/lifecycle"
	"github.com/dep2p/go-messenger/internal/core/namedevent"
	"github.com/dep2p/go-messenger/internal/core/registry"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
	"github.com/dep2p/go-messenger/pkg/lib/log"
)

var logger = log.Logger("messenger")

// 启动超时配置
const (
	// startTimeout Fx App Start 超时
	startTimeout = 15 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              状态
// ════════════════════════════════════════════════════════════════════════════

// State messenger 状态
type State int

const (
	// StateIdle 已创建，未启动
	StateIdle State = iota
	// StateStarting 正在启动
	StateStarting
	// StateRunning 运行中
	StateRunning
	// StateStopping 正在停止
	StateStopping
	// StateStopped 已停止
	StateStopped
	// StateClosed 已关闭
	StateClosed
)

// String 返回状态字符串表示
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              Messenger
// ════════════════════════════════════════════════════════════════════════════

// Messenger 事件系统门面
//
// 聚合由 Fx 组装的注册表、具名事件管理器、后台工作池和 UI 执行上下文。
// 注册表和具名事件管理器在 New 之后即可使用；后台投递需要 Start。
type Messenger struct {
	config *config.Config
	app    *fx.App

	// 由 Fx 注入
	registry    *registry.Registry
	named       *namedevent.Manager
	pool        pkgif.WorkerPool
	ui          pkgif.UIDispatcher
	loop        *dispatch.Loop
	coordinator *lifecycle.Coordinator
	prometheus  *prometheus.Registry

	logFile io.Closer

	mu    sync.Mutex
	state State
}

// New 创建 messenger
//
// 创建但不启动，需要调用 Start。
//
//	m, err := messenger.New(
//	    messenger.WithConfigFile("messenger.yaml"),
//	    messenger.WithLogLevel("debug"),
//	)
func New(opts ...Option) (*Messenger, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, err
	}

	m := &Messenger{config: cfg}
	if err := m.setupLogging(); err != nil {
		return nil, err
	}

	m.app, err = buildFxApp(cfg, o, m)
	if err != nil {
		m.closeLogFile()
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return m, nil
}

// setupLogging 按配置重建默认 logger
func (m *Messenger) setupLogging() error {
	level, err := log.ParseLevel(m.config.LogLevel)
	if err != nil {
		return err
	}

	var w io.Writer
	if m.config.LogFile != "" {
		f, err := os.OpenFile(m.config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		m.logFile = f
		w = f
	}
	log.Setup(w, level)
	return nil
}

func (m *Messenger) closeLogFile() error {
	if m.logFile == nil {
		return nil
	}
	err := m.logFile.Close()
	m.logFile = nil
	return err
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动后台工作池和周期性清理
func (m *Messenger) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateClosed, StateStopped:
		return ErrClosed
	case StateRunning:
		return ErrAlreadyStarted
	}

	m.state = StateStarting
	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := m.app.Start(startCtx); err != nil {
		m.state = StateIdle
		logger.Error("messenger 启动失败", "error", err)
		return fmt.Errorf("start fx app: %w", err)
	}

	m.state = StateRunning
	logger.Info("messenger 已启动",
		"ui", m.ui != nil,
		"buses", m.registry.Len())
	return nil
}

// Stop 停止 messenger
//
// 等待已入队的后台投递完成（最长 dispatch.shutdown_timeout），然后关闭
// UI 执行上下文。停止后不能再 Start，注册表和总线仍可用于同步投递。
func (m *Messenger) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop(ctx)
}

func (m *Messenger) stop(ctx context.Context) error {
	switch m.state {
	case StateClosed:
		return ErrClosed
	case StateRunning:
	default:
		return ErrNotStarted
	}

	m.state = StateStopping
	logger.Info("正在停止 messenger")

	err := m.app.Stop(ctx)
	m.state = StateStopped
	if advErr := m.coordinator.AdvanceTo(lifecycle.PhaseStopped); advErr != nil {
		err = multierr.Append(err, advErr)
	}
	if err != nil {
		logger.Error("停止 messenger 失败", "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}

	logger.Info("messenger 已停止")
	return nil
}

// Close 停止并释放所有资源，之后不能再 Start
func (m *Messenger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateClosed {
		return nil
	}

	var err error
	if m.state == StateRunning {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.Dispatch.ShutdownTimeout.Duration()+time.Second)
		err = m.stop(ctx)
		cancel()
	}

	m.coordinator.Stop()
	m.state = StateClosed
	return multierr.Append(err, m.closeLogFile())
}

// State 返回当前状态
func (m *Messenger) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Phase 返回生命周期阶段
func (m *Messenger) Phase() lifecycle.Phase {
	return m.coordinator.Phase()
}

// WaitRunning 等待 messenger 进入运行阶段
func (m *Messenger) WaitRunning(ctx context.Context) error {
	return m.coordinator.WaitFor(ctx, lifecycle.PhaseRunning)
}

// ════════════════════════════════════════════════════════════════════════════
//                              组件访问
// ════════════════════════════════════════════════════════════════════════════

// Registry 事件注册表
func (m *Messenger) Registry() *registry.Registry {
	return m.registry
}

// Named 具名事件管理器
func (m *Messenger) Named() *NamedEvents {
	return m.named
}

// Names 已创建总线的名称（排序）
func (m *Messenger) Names() []string {
	return m.registry.Names()
}

// UI 注册表捕获的 UI 执行上下文，无头模式下为 nil
func (m *Messenger) UI() pkgif.UIDispatcher {
	return m.ui
}

// UILoop 内置的 UI 执行上下文
//
// 宿主需要在 UI goroutine 上调用 Run 或周期性调用 Drain。
// 无头模式或使用 WithUIDispatcher 时为 nil。
func (m *Messenger) UILoop() *dispatch.Loop {
	return m.loop
}

// Pool 后台工作池
func (m *Messenger) Pool() pkgif.WorkerPool {
	return m.pool
}

// Gatherer 返回 Prometheus 指标采集器
func (m *Messenger) Gatherer() prometheus.Gatherer {
	return m.prometheus
}

// Config 当前生效的配置
func (m *Messenger) Config() *config.Config {
	return m.config
}

// Prune 立即清理所有总线和具名事件的失效订阅
func (m *Messenger) Prune() int {
	return m.registry.Prune() + m.named.Prune()
}

// Event 返回事件类 E 的总线，同一 messenger 内对同一 E 总是返回同一实例
//
//	type WindowsEnumerated struct{ messenger.Typed[[]Window] }
//
//	messenger.Event[WindowsEnumerated](m).Publish(windows)
func Event[E any, PE interface {
	*E
	registry.EventClass
}](m *Messenger) PE {
	return registry.Get[E, PE](m.registry)
}

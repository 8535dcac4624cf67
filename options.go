package messenger

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-messenger/config"
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 配置来源，config 优先于 configFile
	config     *config.Config
	configFile string

	// 日志配置，覆盖配置文件中的值
	logFile  string
	logLevel string

	// 宿主提供的协作设施
	clock clock.Clock
	ui    pkgif.UIDispatcher
	pool  pkgif.WorkerPool

	headless bool

	userFxOptions []fx.Option
}

// resolveConfig 按选项得到最终配置
func (o *options) resolveConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case o.config != nil:
		cfg = o.config
	case o.configFile != "":
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		cfg = config.NewConfig()
	}

	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.headless {
		cfg.UI.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ============================================================================
//                              配置选项
// ============================================================================

// WithConfig 使用给定配置
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从文件加载配置（.json / .yaml / .yml）
func WithConfigFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.New("config file path is empty")
		}
		o.configFile = path
		return nil
	}
}

// WithLogFile 将日志输出重定向到指定文件
//
// 文件以追加模式打开，多次运行会累积日志。
func WithLogFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.New("log file path is empty")
		}
		o.logFile = path
		return nil
	}
}

// WithLogLevel 设置日志级别（debug/info/warn/error）
func WithLogLevel(level string) Option {
	return func(o *options) error {
		o.logLevel = level
		return nil
	}
}

// ============================================================================
//                              协作设施选项
// ============================================================================

// WithClock 使用给定时钟驱动周期性清理，测试中可传入 clock.NewMock()
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithUIDispatcher 使用宿主自己的 UI 执行上下文
//
// 设置后不再创建内置的 dispatch.Loop，UILoop() 返回 nil。
func WithUIDispatcher(ui pkgif.UIDispatcher) Option {
	return func(o *options) error {
		if ui == nil {
			return errors.New("ui dispatcher is nil")
		}
		o.ui = ui
		return nil
	}
}

// WithWorkerPool 使用宿主自己的后台工作池
//
// 设置后不再创建内置的 dispatch.Pool，其生命周期由宿主管理。
func WithWorkerPool(pool pkgif.WorkerPool) Option {
	return func(o *options) error {
		if pool == nil {
			return errors.New("worker pool is nil")
		}
		o.pool = pool
		return nil
	}
}

// WithHeadless 不创建 UI 执行上下文
//
// 此后 PolicyUI 订阅在订阅时返回 ErrNoUIContext。
func WithHeadless() Option {
	return func(o *options) error {
		o.headless = true
		return nil
	}
}

// WithFxOptions 追加用户 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}

// Package config 提供 messenger 的配置管理
//
// 本包采用与组件对应的分文件配置：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义，带默认值和 Validate
//   - 支持从 JSON 或 YAML 加载
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Dispatch.Workers = 8
//
//	// 从文件加载（按扩展名识别格式）
//	cfg, err := config.Load("messenger.yaml")
package config

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-messenger/pkg/lib/log"
)

// Config 是 messenger 的完整配置结构
//
//   - Dispatch: 后台工作池
//   - UI: UI 执行上下文
//   - Housekeeping: 周期性清理失效订阅
//   - Metrics: Prometheus 指标
type Config struct {
	// LogLevel 日志级别（debug/info/warn/error）
	LogLevel string `json:"log_level" yaml:"log_level"`

	// LogFile 日志文件路径，为空时输出到 stderr
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"`

	// Debug 输出 fx 容器日志
	Debug bool `json:"debug" yaml:"debug"`

	// Dispatch 后台工作池配置
	Dispatch DispatchConfig `json:"dispatch" yaml:"dispatch"`

	// UI UI 执行上下文配置
	UI UIConfig `json:"ui" yaml:"ui"`

	// Housekeeping 清理配置
	Housekeeping HousekeepingConfig `json:"housekeeping" yaml:"housekeeping"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		LogLevel:     "info",
		Dispatch:     DefaultDispatchConfig(),
		UI:           DefaultUIConfig(),
		Housekeeping: DefaultHousekeepingConfig(),
		Metrics:      DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if err := c.Dispatch.Validate(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	if err := c.Housekeeping.Validate(); err != nil {
		return fmt.Errorf("housekeeping: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-messenger/pkg/lib/log"
)

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 工作者数量或队列长度非正 -> 使用默认值
//   - 超时或清理间隔为负 -> 使用默认值
//   - 日志级别无法识别 -> info
//   - 指标命名空间非法 -> 使用默认值
//
// 修复后仍无法通过验证时返回错误。
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		c.LogLevel = "info"
	}

	def := DefaultDispatchConfig()
	if c.Dispatch.Workers <= 0 {
		c.Dispatch.Workers = def.Workers
	}
	if c.Dispatch.QueueSize <= 0 {
		c.Dispatch.QueueSize = def.QueueSize
	}
	if c.Dispatch.ShutdownTimeout < 0 {
		c.Dispatch.ShutdownTimeout = def.ShutdownTimeout
	}

	if c.UI.Enabled && c.UI.QueueSize <= 0 {
		c.UI.QueueSize = DefaultUIConfig().QueueSize
	}

	if c.Housekeeping.PruneInterval < 0 {
		c.Housekeeping.PruneInterval = DefaultHousekeepingConfig().PruneInterval
	}

	if c.Metrics.Enabled && !metricNamespace.MatchString(c.Metrics.Namespace) {
		c.Metrics.Namespace = DefaultMetricsConfig().Namespace
	}

	// 验证修复后的配置
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}

	return c, nil
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}
}

// ValidateForEnvironment 验证配置是否适用于特定运行环境
//
// 环境类型：
//   - "desktop": 需要 UI 执行上下文
//   - "headless": 不应创建 UI 执行上下文
//   - "embedded": 工作者和队列都应保持较小
func ValidateForEnvironment(c *Config, env string) error {
	if c == nil {
		return errors.New("config is nil")
	}

	// 先进行基本验证
	if err := c.Validate(); err != nil {
		return err
	}

	switch env {
	case "desktop":
		if !c.UI.Enabled {
			return errors.New("desktop: ui context should be enabled")
		}

	case "headless":
		if c.UI.Enabled {
			return errors.New("headless: ui context should be disabled")
		}

	case "embedded":
		if c.Dispatch.Workers > 2 {
			return errors.New("embedded: too many workers (max 2 recommended)")
		}
		if c.Dispatch.QueueSize > 256 || c.UI.QueueSize > 256 {
			return errors.New("embedded: queue too long (max 256 recommended)")
		}

	default:
		return fmt.Errorf("unknown environment: %s", env)
	}

	return nil
}

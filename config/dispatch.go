package config

import (
	"errors"
	"time"
)

// DispatchConfig 后台工作池配置
type DispatchConfig struct {
	// Workers 工作者数量
	Workers int `json:"workers" yaml:"workers"`

	// QueueSize 待执行任务队列长度，满时后台投递被丢弃
	QueueSize int `json:"queue_size" yaml:"queue_size"`

	// ShutdownTimeout 停止时等待已入队任务的最长时间
	ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// DefaultDispatchConfig 返回默认后台工作池配置
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		Workers:         4,
		QueueSize:       1024,
		ShutdownTimeout: Duration(5 * time.Second),
	}
}

// Validate 验证后台工作池配置
func (c DispatchConfig) Validate() error {
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.QueueSize <= 0 {
		return errors.New("queue_size must be positive")
	}
	if c.ShutdownTimeout < 0 {
		return errors.New("shutdown_timeout must not be negative")
	}
	return nil
}

// UIConfig UI 执行上下文配置
type UIConfig struct {
	// Enabled 是否创建 UI 执行上下文
	//
	// 关闭后 PolicyUI 订阅返回 ErrNoUIContext。
	Enabled bool `json:"enabled" yaml:"enabled"`

	// QueueSize UI 任务队列长度
	QueueSize int `json:"queue_size" yaml:"queue_size"`
}

// DefaultUIConfig 返回默认 UI 配置
func DefaultUIConfig() UIConfig {
	return UIConfig{
		Enabled:   true,
		QueueSize: 256,
	}
}

// Validate 验证 UI 配置
func (c UIConfig) Validate() error {
	if c.Enabled && c.QueueSize <= 0 {
		return errors.New("queue_size must be positive")
	}
	return nil
}

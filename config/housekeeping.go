package config

import (
	"errors"
	"time"
)

// HousekeepingConfig 周期性清理配置
type HousekeepingConfig struct {
	// PruneInterval 清理间隔，0 表示只在发布时清理
	PruneInterval Duration `json:"prune_interval" yaml:"prune_interval"`
}

// DefaultHousekeepingConfig 返回默认清理配置
func DefaultHousekeepingConfig() HousekeepingConfig {
	return HousekeepingConfig{
		PruneInterval: Duration(30 * time.Second),
	}
}

// Validate 验证清理配置
func (c HousekeepingConfig) Validate() error {
	if c.PruneInterval < 0 {
		return errors.New("prune_interval must not be negative")
	}
	return nil
}

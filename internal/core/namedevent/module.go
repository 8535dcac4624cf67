package namedevent

import (
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

// Module 具名事件管理器模块
//
// 提供 *Manager，并加入 "pruners" 组由清理器周期性清理。
var Module = fx.Module("namedevent",
	fx.Provide(provide),
)

// Result 模块导出结果
type Result struct {
	fx.Out

	Manager *Manager
	Pruner  pkgif.Pruner `group:"pruners"`
}

func provide() Result {
	m := New()
	return Result{Manager: m, Pruner: m}
}

package lifecycle

import (
	"context"

	"go.uber.org/fx"
)

// Module 返回 Fx 模块
//
// 提供生命周期协调器作为全局单例。Start 钩子在其他模块之后执行，
// 推进到 running；Stop 钩子最先执行，推进到 draining。
func Module() fx.Option {
	return fx.Module("lifecycle",
		fx.Provide(NewCoordinator),
	)
}

// hooksParams 生命周期钩子参数
type hooksParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Coordinator *Coordinator
}

// Hooks 返回注册运行阶段钩子的 Invoke
//
// 需要放在所有模块之后，才能保证 running 表示全部模块已启动。
func Hooks() fx.Option {
	return fx.Invoke(registerHooks)
}

func registerHooks(params hooksParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return params.Coordinator.AdvanceTo(PhaseRunning)
		},
		OnStop: func(_ context.Context) error {
			return params.Coordinator.AdvanceTo(PhaseDraining)
		},
	})
}

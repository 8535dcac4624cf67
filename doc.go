// Package messenger 提供进程内的类型化发布/订阅事件总线
//
// # 核心概念
//
//   - 事件类：嵌入 eventbus.Bus（无载荷）或 eventbus.Typed[T]（载荷类型 T）的结构体
//   - 注册表：每个事件类对应唯一一个总线实例
//   - 投递策略：同步（inline）、后台工作池（background）、UI 执行上下文（ui）
//   - 弱订阅：回调绑定到 lifetime.Handle，所有者释放后订阅被静默清理
//   - 具名事件：按字符串事件名注册的弱处理函数
//
// # 快速开始
//
//	type LayoutApplied struct{ eventbus.Bus }
//	type WindowsEnumerated struct{ eventbus.Typed[[]Window] }
//
//	m, err := messenger.New(messenger.WithConfigFile("messenger.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := m.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//
//	windows := messenger.Event[WindowsEnumerated](m)
//	windows.Subscribe(render, eventbus.WithPolicy(messenger.PolicyUI))
//	windows.Publish(list)
//
//	// UI 执行上下文需要宿主在 UI goroutine 上驱动
//	go m.UILoop().Run(ctx)
//
// # 生命周期
//
// New 只组装 fx 容器；Start 启动后台工作池与周期性清理；Stop 在
// dispatch.shutdown_timeout 内等待已入队的后台投递完成，然后关闭 UI 上下文。
// Stop 或 Close 之后不能再 Start。
package messenger

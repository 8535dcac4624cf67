// Package eventbus 实现进程内事件总线
//
// 提供类型安全的事件发布/订阅机制，支持：
//   - 三种投递策略：同步（inline）、后台工作池（background）、UI 上下文（ui）
//   - 弱订阅：回调绑定到所有者句柄，所有者释放后订阅被静默清理
//   - 载荷过滤器
//   - 回调执行期间安全地订阅、取消订阅或再次发布
//
// # 快速开始
//
//	// 定义事件类
//	type WindowsEnumerated struct{ eventbus.Typed[[]Window] }
//	type LayoutApplied struct{ eventbus.Bus }
//
//	// 从注册表获取总线
//	bus := registry.Get[WindowsEnumerated](reg)
//
//	// 订阅
//	tok, err := bus.Subscribe(view.OnWindows,
//	    eventbus.WithOwner(view.Handle()),
//	    eventbus.WithPolicy(interfaces.PolicyUI),
//	    eventbus.WithFilter(func(ws []Window) bool { return len(ws) > 0 }))
//
//	// 发布
//	err = bus.Publish(windows)
//
//	// 取消订阅
//	bus.Unsubscribe(tok)
//
// # 发布顺序
//
// Publish 在总线锁内按注册的逆序收集执行策略（同时移除失效订阅），
// 释放锁后按收集顺序执行。因此同步订阅者按"后订阅先收到"的顺序被调用；
// 这一顺序是稳定的，但调用方不应依赖它。后台和 UI 投递没有顺序保证。
//
// # 并发安全
//
//   - 每个总线一把 sync.Mutex，保护订阅集合
//   - 锁在调用任何用户回调之前释放
//   - 回调解析只读取所有者句柄的原子代数，无锁
//
// # 错误
//
//   - ErrInvalidCallback：回调或过滤器为空
//   - ErrShapeMismatch：回调形状与事件不符
//   - ErrNoUIContext：总线没有 UI 上下文却请求 PolicyUI
//   - ErrMissingPayload：Typed[T].Publish 的载荷为空
//
// 失效订阅不是错误，只会被移除。
package eventbus

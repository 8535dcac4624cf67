// Package interfaces 定义 messenger 公共接口
//
// 本文件定义事件总线与宿主程序之间的协作接口。
package interfaces

// DispatchPolicy 投递策略
//
// 决定订阅者回调最终在哪个执行上下文运行。
type DispatchPolicy int

const (
	// PolicyInline 在 Publish 调用者的 goroutine 上同步执行
	PolicyInline DispatchPolicy = iota
	// PolicyBackground 提交到后台工作池执行
	PolicyBackground
	// PolicyUI 投递到 UI 执行上下文执行
	PolicyUI
)

// String 返回策略名称
func (p DispatchPolicy) String() string {
	switch p {
	case PolicyInline:
		return "inline"
	case PolicyBackground:
		return "background"
	case PolicyUI:
		return "ui"
	default:
		return "unknown"
	}
}

// UIDispatcher UI 执行上下文
//
// 由宿主程序提供的单消费者执行上下文。Post 不得阻塞调用者。
type UIDispatcher interface {
	// Post 将 fn 排入 UI 上下文执行
	Post(fn func()) error
}

// WorkerPool 后台工作提交设施
//
// Submit 不得阻塞调用者；执行顺序不作保证。
type WorkerPool interface {
	// Submit 提交 fn 到后台执行
	Submit(fn func()) error
}

// Pruner 可清理失效订阅的组件
type Pruner interface {
	// Prune 移除失效订阅，返回移除数量
	Prune() int
}

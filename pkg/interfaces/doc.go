// Package interfaces 定义 messenger 的公共接口
//
// 事件总线只通过这里的接口消费宿主程序提供的能力：
//   - eventbus.go       - UIDispatcher、WorkerPool、DispatchPolicy
//
// 默认实现位于 internal/core/dispatch。
package interfaces

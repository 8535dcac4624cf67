package eventbus

import (
	pkgif "github.com/dep2p/go-messenger/pkg/interfaces"
)

// Delivery 投递方式
//
// 三种实现的区别只在于已解析的回调最终在哪里执行。
type Delivery interface {
	// Policy 对应的投递策略
	Policy() pkgif.DispatchPolicy

	deliver(fn func()) error
}

type inlineDelivery struct{}

// InlineDelivery 在 Publish 调用者的 goroutine 上同步执行
func InlineDelivery() Delivery {
	return inlineDelivery{}
}

func (inlineDelivery) Policy() pkgif.DispatchPolicy { return pkgif.PolicyInline }

func (inlineDelivery) deliver(fn func()) error {
	fn()
	return nil
}

type backgroundDelivery struct {
	pool pkgif.WorkerPool
}

// BackgroundDelivery 提交到后台工作池，立即返回
func BackgroundDelivery(pool pkgif.WorkerPool) (Delivery, error) {
	if pool == nil {
		return nil, ErrNoWorkerPool
	}
	return backgroundDelivery{pool: pool}, nil
}

func (backgroundDelivery) Policy() pkgif.DispatchPolicy { return pkgif.PolicyBackground }

func (d backgroundDelivery) deliver(fn func()) error {
	return d.pool.Submit(fn)
}

type uiDelivery struct {
	ui pkgif.UIDispatcher
}

// UIDelivery 投递到 UI 执行上下文
func UIDelivery(ui pkgif.UIDispatcher) (Delivery, error) {
	if ui == nil {
		return nil, ErrNoUIContext
	}
	return uiDelivery{ui: ui}, nil
}

func (uiDelivery) Policy() pkgif.DispatchPolicy { return pkgif.PolicyUI }

func (d uiDelivery) deliver(fn func()) error {
	return d.ui.Post(fn)
}

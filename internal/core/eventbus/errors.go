package eventbus

import (
	"errors"

	"github.com/dep2p/go-messenger/internal/core/callback"
)

var (
	// ErrInvalidCallback 回调或过滤器为空
	ErrInvalidCallback = callback.ErrInvalidCallback
	// ErrShapeMismatch 回调形状与事件要求的形状不一致
	ErrShapeMismatch = errors.New("callback shape mismatch")
	// ErrNoUIContext 总线没有捕获 UI 执行上下文
	ErrNoUIContext = errors.New("no ui dispatch context captured")
	// ErrNoWorkerPool 总线没有后台工作池
	ErrNoWorkerPool = errors.New("no background worker pool")
	// ErrMissingPayload 有载荷事件发布时载荷为空
	ErrMissingPayload = errors.New("missing event payload")
	// ErrUnknownPolicy 未知的投递策略
	ErrUnknownPolicy = errors.New("unknown dispatch policy")
)

package namedevent

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingName 事件名为空或全是空白
	ErrMissingName = errors.New("missing event name")
	// ErrMissingCallback 处理函数为空
	ErrMissingCallback = errors.New("missing event handler")
	// ErrInvalidHandleEvent 处理函数的形状与调用参数不匹配
	ErrInvalidHandleEvent = errors.New("invalid handle event")
)

// InvalidHandleEventError 描述一次参数与处理函数形状不匹配
type InvalidHandleEventError struct {
	// Name 事件名
	Name string
	// Handler 处理函数的形状
	Handler string
	// Args 调用时的参数类型
	Args []string
}

func (e *InvalidHandleEventError) Error() string {
	return fmt.Sprintf("%s %q: handler %s cannot be called with (%s)",
		ErrInvalidHandleEvent, e.Name, e.Handler, strings.Join(e.Args, ", "))
}

// Is 匹配 ErrInvalidHandleEvent
func (e *InvalidHandleEventError) Is(target error) bool {
	return target == ErrInvalidHandleEvent
}

// Package callback 实现回调引用
//
// Reference 以强引用或弱引用方式持有一个回调函数：
//   - 强引用（keepAlive）：始终可解析
//   - 弱引用：仅当所有者句柄存活时可解析；无所有者的自由函数始终可解析
//
// 回调的"方法描述"由函数代码指针和声明形状（reflect.Type）组成，
// 回调的"目标"是指针接收者方法值绑定的接收者，其余函数值以闭包本身为目标。
// 二者一起用于按回调身份查找和移除订阅。
package callback

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"unsafe"

	"github.com/dep2p/go-messenger/internal/core/lifetime"
)

// ErrInvalidCallback 回调为空或不是函数
var ErrInvalidCallback = errors.New("invalid callback")

// Reference 回调引用
type Reference struct {
	fn        any
	shape     reflect.Type
	code      uintptr
	target    unsafe.Pointer
	owner     lifetime.Handle
	keepAlive bool
}

// New 创建无所有者的回调引用
func New(fn any, keepAlive bool) (*Reference, error) {
	return Bind(lifetime.Handle{}, fn, keepAlive)
}

// Bind 创建绑定到所有者句柄的回调引用
//
// 指针接收者的方法值（v.OnMoved）以接收者区分实例，重复求值仍视为同一回调；
// 闭包以闭包值本身区分，按回调取消订阅时应传入订阅时的同一个函数值。
func Bind(owner lifetime.Handle, fn any, keepAlive bool) (*Reference, error) {
	if fn == nil {
		return nil, ErrInvalidCallback
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %T is not a func", ErrInvalidCallback, fn)
	}
	if v.IsNil() {
		return nil, fmt.Errorf("%w: nil %s", ErrInvalidCallback, v.Type())
	}

	return &Reference{
		fn:        fn,
		shape:     v.Type(),
		code:      v.Pointer(),
		target:    targetOf(fn, v.Pointer()),
		owner:     owner,
		keepAlive: keepAlive,
	}, nil
}

// Resolve 解析回调
//
// 弱引用的所有者已释放时返回 (nil, false)。
func (r *Reference) Resolve() (any, bool) {
	if r.keepAlive || r.owner.Alive() {
		return r.fn, true
	}
	return nil, false
}

// Alive 回调是否仍可解析
func (r *Reference) Alive() bool {
	return r.keepAlive || r.owner.Alive()
}

// Shape 回调的声明形状
func (r *Reference) Shape() reflect.Type {
	return r.shape
}

// Conforms 回调形状是否与 want 一致（允许具名函数类型）
func (r *Reference) Conforms(want reflect.Type) bool {
	return r.shape == want || r.shape.ConvertibleTo(want)
}

// Owner 所有者句柄
func (r *Reference) Owner() lifetime.Handle {
	return r.owner
}

// KeepAlive 是否为强引用
func (r *Reference) KeepAlive() bool {
	return r.keepAlive
}

// Equals 判断两个引用是否指向同一回调
//
// 方法描述和目标必须相同。
// 强引用：所有者也相同。
// 弱引用：所有者相同，或本引用的所有者已释放而 other 无所有者。
func (r *Reference) Equals(other *Reference) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.code != other.code || r.shape != other.shape || r.target != other.target {
		return false
	}
	if r.owner == other.owner {
		return true
	}
	if r.keepAlive {
		return false
	}
	return !r.owner.Alive() && other.owner.IsZero()
}

// targetOf 返回回调的目标
//
// func 值在接口中直接以闭包指针存放。指针接收者方法值的闭包布局为
// {code, receiver}，编译器生成的包装函数名形如 "pkg.(*T).M-fm"。
func targetOf(fn any, code uintptr) unsafe.Pointer {
	closure := (*[2]unsafe.Pointer)(unsafe.Pointer(&fn))[1]

	f := runtime.FuncForPC(code)
	if f == nil {
		return closure
	}
	name := f.Name()
	if strings.HasSuffix(name, "-fm") && strings.Contains(name, "(*") {
		return (*[2]unsafe.Pointer)(closure)[1]
	}
	return closure
}

// String 返回调试用的描述
func (r *Reference) String() string {
	mode := "weak"
	if r.keepAlive {
		mode = "strong"
	}
	return fmt.Sprintf("%s@%#x(%s)", r.shape, r.code, mode)
}

// As 解析回调并转换为函数类型 F
func As[F any](r *Reference) (F, bool) {
	var zero F

	v, ok := r.Resolve()
	if !ok {
		return zero, false
	}
	if f, ok := v.(F); ok {
		return f, true
	}

	want := reflect.TypeFor[F]()
	rv := reflect.ValueOf(v)
	if !rv.Type().ConvertibleTo(want) {
		return zero, false
	}
	return rv.Convert(want).Interface().(F), true
}

// Package lifetime 提供订阅者生命周期句柄
//
// 订阅者的所有者从 Arena 获取一个带代数（generation）的 Handle，
// 在订阅者销毁时调用 Release。事件总线只保存 Handle，
// 通过 Handle.Alive() 判断订阅者是否仍然存活，不依赖 GC。
//
// # 并发安全
//
//   - Acquire / Release：Arena 内部 mutex 保护空闲槽位列表
//   - Alive：原子读取，无锁
package lifetime

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStaleHandle 句柄已释放或不属于该 Arena
var ErrStaleHandle = errors.New("stale lifetime handle")

// slot 句柄槽位
//
// gen 为奇数表示占用，偶数表示空闲。
type slot struct {
	gen   atomic.Uint64
	arena *Arena
}

// Handle 订阅者生命周期句柄
//
// 零值表示"无所有者"（自由函数），始终存活。
// Handle 可比较，可作为 map 键。
type Handle struct {
	s   *slot
	gen uint64
}

// IsZero 是否为零值句柄
func (h Handle) IsZero() bool {
	return h.s == nil
}

// Alive 所有者是否存活
func (h Handle) Alive() bool {
	if h.s == nil {
		return true
	}
	return h.s.gen.Load() == h.gen
}

// Arena 句柄分配器
type Arena struct {
	mu    sync.Mutex
	free  []*slot
	live  int
	total int
}

// NewArena 创建句柄分配器
func NewArena() *Arena {
	return &Arena{}
}

// Acquire 分配一个新的存活句柄
//
// 已释放的槽位会被复用，但代数递增，旧句柄不会复活。
func (a *Arena) Acquire() Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	var s *slot
	if n := len(a.free); n > 0 {
		s = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		s = &slot{arena: a}
		a.total++
	}
	a.live++

	gen := s.gen.Add(1)
	return Handle{s: s, gen: gen}
}

// Release 释放句柄，之后 h.Alive() 返回 false
func (a *Arena) Release(h Handle) error {
	if h.s == nil || h.s.arena != a {
		return ErrStaleHandle
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !h.s.gen.CompareAndSwap(h.gen, h.gen+1) {
		return ErrStaleHandle
	}
	a.free = append(a.free, h.s)
	a.live--
	return nil
}

// Live 当前存活句柄数
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// Slots 已分配的槽位总数（含空闲）
func (a *Arena) Slots() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

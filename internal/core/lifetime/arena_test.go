package lifetime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_ZeroIsAlive(t *testing.T) {
	var h Handle
	assert.True(t, h.IsZero())
	assert.True(t, h.Alive())
}

func TestArena_AcquireRelease(t *testing.T) {
	a := NewArena()

	h := a.Acquire()
	assert.False(t, h.IsZero())
	assert.True(t, h.Alive())
	assert.Equal(t, 1, a.Live())

	require.NoError(t, a.Release(h))
	assert.False(t, h.Alive())
	assert.Equal(t, 0, a.Live())

	// 重复释放
	assert.ErrorIs(t, a.Release(h), ErrStaleHandle)
}

// TestArena_ReuseDoesNotRevive 验证槽位复用后旧句柄保持失效
func TestArena_ReuseDoesNotRevive(t *testing.T) {
	a := NewArena()

	old := a.Acquire()
	require.NoError(t, a.Release(old))

	fresh := a.Acquire()
	assert.Equal(t, 1, a.Slots(), "slot should be reused")
	assert.True(t, fresh.Alive())
	assert.False(t, old.Alive())
	assert.NotEqual(t, old, fresh)

	assert.ErrorIs(t, a.Release(old), ErrStaleHandle)
	assert.True(t, fresh.Alive())
}

func TestArena_ForeignHandle(t *testing.T) {
	a, b := NewArena(), NewArena()
	h := a.Acquire()

	assert.ErrorIs(t, b.Release(h), ErrStaleHandle)
	assert.ErrorIs(t, b.Release(Handle{}), ErrStaleHandle)
	assert.True(t, h.Alive())
}

func TestArena_Concurrent(t *testing.T) {
	a := NewArena()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h := a.Acquire()
				_ = h.Alive()
				if err := a.Release(h); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, a.Live())
	assert.LessOrEqual(t, a.Slots(), 16)
}

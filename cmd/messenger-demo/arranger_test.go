package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-messenger"
)

func TestEnumerate(t *testing.T) {
	assert.Len(t, enumerate(1), 2)
	assert.Len(t, enumerate(4), 5)
	assert.Len(t, enumerate(5), 1)
	assert.Equal(t, "editor", enumerate(3)[0].Title)
}

// TestArranger_ReleasedOwnerIsPruned 测试释放排列器后其订阅被清理
func TestArranger_ReleasedOwnerIsPruned(t *testing.T) {
	m, err := messenger.New(messenger.WithHeadless())
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	defer m.Close()

	arena := messenger.NewArena()
	a := newArranger(arena.Acquire())
	require.NoError(t, a.wire(m))

	windows := messenger.Event[WindowsEnumerated](m)
	assert.Equal(t, 2, windows.Len(), "ui subscription skipped when headless")

	require.NoError(t, windows.Publish(enumerate(1)))
	assert.Equal(t, 1, a.seen)
	require.NoError(t, m.Named().HandleFrom(EventLayoutChanged, m, "grid"))

	require.NoError(t, arena.Release(a.owner))
	require.NoError(t, windows.Publish(enumerate(2)))
	assert.Equal(t, 1, a.seen)
	assert.Equal(t, 0, windows.Len())

	require.NoError(t, m.Named().HandleFrom(EventLayoutChanged, m, "columns"))
	assert.Equal(t, 0, m.Named().Len(EventLayoutChanged))
}

package eventbus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-messenger/internal/core/callback"
)

func mustRef(t *testing.T, fn any) *callback.Reference {
	t.Helper()
	ref, err := callback.New(fn, true)
	require.NoError(t, err)
	return ref
}

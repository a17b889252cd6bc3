package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	var store Store = NewMemory()

	var got []string
	assert.ErrorIs(t, store.Get("logs", &got), ErrNotFound)

	require.NoError(t, store.Set("logs", []string{"a", "b"}))
	require.NoError(t, store.Get("logs", &got))
	assert.Equal(t, []string{"a", "b"}, got)

	require.NoError(t, store.Delete("logs"))
	assert.ErrorIs(t, store.Get("logs", &got), ErrNotFound)

	assert.Error(t, store.Set("bad", func() {}))
}

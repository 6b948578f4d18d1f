package store_test

import (
	"context"
	"testing"

	"github.com/caredesk/go-adminauth/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	got, err := m.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, m.Set(ctx, "accessToken", "tok-abc"))
	got, err = m.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", got)

	require.NoError(t, m.Remove(ctx, "accessToken"))
	got, err = m.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Empty(t, got)

	// Removing again is fine.
	require.NoError(t, m.Remove(ctx, "accessToken"))
}

func TestMemoryStoreSeed(t *testing.T) {
	ctx := context.Background()
	m := store.Seed(map[string]string{"accessToken": "tok-abc"})

	got, err := m.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", got)
}

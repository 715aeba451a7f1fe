package inmemkv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/pathways/core/kv"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := Open(0)

	_, ok, err := s.Get(ctx, "app_careers")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "app_careers", []byte(`[1]`)))
	require.NoError(t, s.Set(ctx, "app_events", []byte(`[]`)))

	val, ok, err := s.Get(ctx, "app_careers")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1]`, string(val))

	// returned bytes are a copy
	val[0] = 'x'
	val, _, _ = s.Get(ctx, "app_careers")
	assert.Equal(t, `[1]`, string(val))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"app_careers", "app_events"}, keys)

	require.NoError(t, s.Delete(ctx, "app_careers"))
	require.NoError(t, s.Delete(ctx, "app_careers")) // missing key
	_, ok, _ = s.Get(ctx, "app_careers")
	assert.False(t, ok)
	assert.Equal(t, len("app_events")+len(`[]`), s.Size())
}

func TestStore_Quota(t *testing.T) {
	ctx := context.Background()
	s := Open(20)

	require.NoError(t, s.Set(ctx, "k", []byte(`"0123456789"`))) // 1 + 12
	assert.Equal(t, 13, s.Size())

	err := s.Set(ctx, "k2", []byte(`"0123456"`)) // 2 + 9 -> 24
	assert.Equal(t, kv.ErrQuotaExceeded, err)
	_, ok, _ := s.Get(ctx, "k2")
	assert.False(t, ok)

	// replacing a value only counts the difference
	require.NoError(t, s.Set(ctx, "k", []byte(`"0123456789abcdef"`))) // 1 + 18
	assert.Equal(t, 19, s.Size())
}

package sqlkv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/kv"
	"github.com/trezcool/pathways/tests"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New(testutil.PrepareDB(t))

	_, ok, err := s.Get(ctx, "app_careers")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "app_careers", []byte(`[{"id":1,"name":"Medicine"}]`)))
	require.NoError(t, s.Set(ctx, "app_careers", []byte(`[{"id":1,"name":"Medicine"},{"id":2,"name":"Law"}]`)))
	require.NoError(t, s.Set(ctx, "app_events", []byte(`[]`)))

	val, ok, err := s.Get(ctx, "app_careers")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1,"name":"Medicine"},{"id":2,"name":"Law"}]`, string(val))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"app_careers", "app_events"}, keys)

	require.NoError(t, s.Delete(ctx, "app_careers"))
	require.NoError(t, s.Delete(ctx, "app_careers"))
	_, ok, err = s.Get(ctx, "app_careers")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PollReportsOtherWriters(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	api, cli := New(db), New(db)
	hub := kv.NewHub()
	changes, cancel := hub.Subscribe("")
	defer cancel()

	require.NoError(t, api.Set(ctx, "app_admin_users", []byte(`[{"id":1}]`)))
	require.NoError(t, cli.Set(ctx, "app_careers", []byte(`[]`)))
	seen, err := api.versions(ctx)
	require.NoError(t, err)

	now := core.NowFunc
	defer func() { core.NowFunc = now }()
	core.NowFunc = func() time.Time { return now().Add(time.Minute) }

	require.NoError(t, cli.Set(ctx, "app_admin_users", []byte(`[{"id":1},{"id":2}]`)))
	require.NoError(t, cli.Delete(ctx, "app_careers"))
	require.NoError(t, api.Set(ctx, "app_events", []byte(`[]`)))

	seen, err = api.poll(ctx, hub, seen)
	require.NoError(t, err)

	got := make(map[string]kv.Change)
	for len(changes) > 0 {
		c := <-changes
		got[c.Key] = c
	}
	require.Len(t, got, 2)
	assert.Equal(t, kv.Change{Key: "app_admin_users", Value: []byte(`[{"id":1},{"id":2}]`), Remote: true}, got["app_admin_users"])
	assert.Equal(t, kv.Change{Key: "app_careers", Deleted: true, Remote: true}, got["app_careers"])

	// nothing new
	_, err = api.poll(ctx, hub, seen)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

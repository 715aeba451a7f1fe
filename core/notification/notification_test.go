package notification_test

import (
	"context"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/kv"
	"github.com/trezcool/pathways/core/namespace"
	"github.com/trezcool/pathways/core/notification"
	emailsvc "github.com/trezcool/pathways/services/email"
	testutil "github.com/trezcool/pathways/tests"
)

func seedNotifications(n int) []notification.Notification {
	items := make([]notification.Notification, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, notification.Notification{
			ID:        string(rune('0' + i)),
			Title:     "Notification " + string(rune('0'+i)),
			Timestamp: "2 hours ago",
			Read:      i%2 == 0,
		})
	}
	return items
}

func newFeed(t *testing.T, seed []notification.Notification, quota ...int) (*notification.Feed, *namespace.Registry) {
	reg, _ := testutil.NewRegistry(t, new(testutil.Logger), quota...)
	return notification.NewFeed(reg.Notifications, seed), reg
}

func stored(t *testing.T, reg *namespace.Registry) []notification.Notification {
	items, err := reg.Notifications.Get(context.Background(), nil)
	require.NoError(t, err)
	return items
}

func unread(items []notification.Notification) int {
	var n int
	for _, item := range items {
		if !item.Read {
			n++
		}
	}
	return n
}

func TestFeed_ListPreview(t *testing.T) {
	ctx := context.Background()
	feed, reg := newFeed(t, seedNotifications(7))

	tests := []struct {
		name    string
		limit   int
		wantIDs []string
	}{
		{name: "default limit", limit: 0, wantIDs: []string{"1", "2", "3", "4", "5"}},
		{name: "custom limit", limit: 2, wantIDs: []string{"1", "2"}},
		{name: "limit above length", limit: 50, wantIDs: []string{"1", "2", "3", "4", "5", "6", "7"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := feed.ListPreview(ctx, tt.limit)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, n := range got {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
	assert.Equal(t, seedNotifications(7), stored(t, reg), "viewing should not change read state")
}

func TestFeed_MarkAllAsRead(t *testing.T) {
	ctx := context.Background()
	feed, reg := newFeed(t, []notification.Notification{{ID: "1", Read: false}, {ID: "2", Read: true}})

	require.NoError(t, feed.MarkAllAsRead(ctx))
	assert.Equal(t, []notification.Notification{{ID: "1", Read: true}, {ID: "2", Read: true}}, stored(t, reg))

	count, err := feed.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFeed_MarkAsRead(t *testing.T) {
	ctx := context.Background()
	feed, reg := newFeed(t, seedNotifications(3))

	found, err := feed.MarkAsRead(ctx, "1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, stored(t, reg)[0].Read)

	// read stays read
	found, err = feed.MarkAsRead(ctx, "2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, stored(t, reg)[1].Read)

	before := stored(t, reg)
	found, err = feed.MarkAsRead(ctx, "999")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, stored(t, reg))
}

func TestFeed_Delete(t *testing.T) {
	ctx := context.Background()
	feed, reg := newFeed(t, seedNotifications(3))

	found, err := feed.Delete(ctx, "2")
	require.NoError(t, err)
	assert.True(t, found)
	for _, n := range stored(t, reg) {
		assert.NotEqual(t, "2", n.ID)
	}

	// deleted is terminal
	found, err = feed.Delete(ctx, "2")
	require.NoError(t, err)
	assert.False(t, found)
	found, err = feed.MarkAsRead(ctx, "2")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Len(t, stored(t, reg), 2)
}

func TestFeed_UnreadCountInvariant(t *testing.T) {
	ctx := context.Background()
	feed, reg := newFeed(t, seedNotifications(6))

	ops := []func() error{
		func() error { _, err := feed.MarkAsRead(ctx, "1"); return err },
		func() error { _, err := feed.Delete(ctx, "3"); return err },
		func() error { _, err := feed.Delete(ctx, "4"); return err },
		func() error { _, err := feed.MarkAsRead(ctx, "42"); return err },
		func() error { _, err := feed.Publish(ctx, notification.NewNotification{Title: "New", Body: "Hi"}); return err },
		func() error { return feed.MarkAllAsRead(ctx) },
	}
	wasRead := make(map[string]bool)
	for i, op := range ops {
		require.NoError(t, op(), "op %d", i)

		items := stored(t, reg)
		count, err := feed.UnreadCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, unread(items), count, "after op %d", i)

		for _, n := range items {
			if wasRead[n.ID] {
				assert.True(t, n.Read, "notification %s went back to unread after op %d", n.ID, i)
			}
			wasRead[n.ID] = n.Read
		}
	}
}

func TestFeed_Publish(t *testing.T) {
	ctx := context.Background()
	conf := core.NewTestConfig()
	mailer := emailsvc.NewConsoleServiceMock(conf, new(testutil.Logger))
	feed, reg := newFeed(t, seedNotifications(2))
	feed.WithMailer(mailer, mail.Address{Name: "Jane", Address: "jane@test.test"})

	n, err := feed.Publish(ctx, notification.NewNotification{Title: "Career fair", Body: "Friday at 10"})
	require.NoError(t, err)
	assert.False(t, n.Read)
	assert.NotEmpty(t, n.ID)
	assert.NotEmpty(t, n.Timestamp)
	assert.Equal(t, n, stored(t, reg)[0], "new notifications should be shown first")
	assert.Empty(t, mailer.SentMessages())

	_, err = feed.Publish(ctx, notification.NewNotification{Title: "Deadline", Body: "Apply now", Email: true})
	require.NoError(t, err)
	sent := mailer.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Deadline", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, "Apply now")
}

func TestFeed_SaveFailure(t *testing.T) {
	ctx := context.Background()
	feed, reg := newFeed(t, seedNotifications(1), 200)

	_, err := feed.Publish(ctx, notification.NewNotification{Title: "Big", Body: strings.Repeat("x", 300)})
	require.Error(t, err)
	assert.True(t, kv.IsNotSaved(err))
	assert.Equal(t, seedNotifications(1), stored(t, reg))
}

func TestNewNotification_Validate(t *testing.T) {
	validate, _ := core.NewValidator()

	nn := notification.NewNotification{Title: "  Fair ", Body: " Friday "}
	require.NoError(t, nn.Validate(validate))
	assert.Equal(t, "Fair", nn.Title)

	blank := notification.NewNotification{Title: "  "}
	assert.Error(t, blank.Validate(validate))
}

package notify_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"mets-backend/internal/notify"
)

func TestFeed_RecentNewestFirst(t *testing.T) {
	feed := notify.NewFeed(5, zap.NewNop())

	feed.Notify("first", notify.SeverityInfo)
	feed.Notify("second", notify.SeverityError)

	items := feed.Recent(0)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Message)
	assert.Equal(t, notify.SeverityError, items[0].Severity)
	assert.Equal(t, "first", items[1].Message)
	assert.NotEmpty(t, items[0].ID)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestFeed_DropsOldestWhenFull(t *testing.T) {
	feed := notify.NewFeed(3, nil)

	for i := 1; i <= 5; i++ {
		feed.Notify(fmt.Sprintf("msg-%d", i), notify.SeverityInfo)
	}

	items := feed.Recent(0)
	require.Len(t, items, 3)
	assert.Equal(t, "msg-5", items[0].Message)
	assert.Equal(t, "msg-4", items[1].Message)
	assert.Equal(t, "msg-3", items[2].Message)
}

func TestFeed_RecentLimit(t *testing.T) {
	feed := notify.NewFeed(10, nil)
	for i := 0; i < 4; i++ {
		feed.Notify("x", notify.SeverityWarning)
	}

	assert.Len(t, feed.Recent(2), 2)
	assert.Len(t, feed.Recent(100), 4)
}

package realtime_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/realtime"
)

func change(t *testing.T, table model.Table, typ model.EventType, id string) model.Change {
	t.Helper()
	c, err := model.NewChange(table, typ, model.Schedule{ID: id, Title: id})
	require.NoError(t, err)
	return c
}

func TestHubDeliversToMatchingTable(t *testing.T) {
	hub := realtime.NewHub(nil)
	sched := hub.Subscribe(realtime.ChannelSchedules, model.TableSchedules)
	qt := hub.Subscribe(realtime.ChannelQtCheck, model.TableQtCheck)
	defer sched.Close()
	defer qt.Close()

	hub.Publish(change(t, model.TableSchedules, model.EventInsert, "a"))
	hub.Publish(change(t, model.TableSchedules, model.EventDelete, "a"))

	first := <-sched.Changes()
	second := <-sched.Changes()
	assert.Equal(t, model.EventInsert, first.Type)
	assert.Equal(t, model.EventDelete, second.Type)

	select {
	case c := <-qt.Changes():
		t.Fatalf("unexpected change on qtcheck subscription: %+v", c)
	default:
	}
}

func TestSubscriptionCloseUnsubscribes(t *testing.T) {
	hub := realtime.NewHub(nil)
	sub := hub.Subscribe("c", model.TableSchedules)
	assert.Equal(t, 1, hub.Count(model.TableSchedules))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.Count(model.TableSchedules))
	assert.True(t, sub.Closed())
	assert.NoError(t, sub.Err())

	_, ok := <-sub.Changes()
	assert.False(t, ok)

	// Publishing after close must not panic.
	hub.Publish(change(t, model.TableSchedules, model.EventInsert, "x"))
}

func TestSubscriptionFullBufferDrops(t *testing.T) {
	sub := realtime.NewSubscription("c", model.TableSchedules, 1, nil)
	defer sub.Close()

	assert.True(t, sub.Publish(model.Change{Type: model.EventInsert}))
	assert.False(t, sub.Publish(model.Change{Type: model.EventUpdate}))

	got := <-sub.Changes()
	assert.Equal(t, model.EventInsert, got.Type)
}

func TestSubscriptionWaitMessages(t *testing.T) {
	sub := realtime.NewSubscription("public:schedules", model.TableSchedules, 4, nil)
	require.True(t, sub.Publish(model.Change{Type: model.EventInsert}))

	msg := sub.Wait()()
	cm, ok := msg.(realtime.ChangeMsg)
	require.True(t, ok)
	assert.Equal(t, "public:schedules", cm.Channel)

	boom := errors.New("stream reset")
	sub.Terminate(boom)

	msg = sub.Wait()()
	closed, ok := msg.(realtime.ClosedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, closed.Err, boom)
}

func TestHubCloseEndsAll(t *testing.T) {
	hub := realtime.NewHub(nil)
	a := hub.Subscribe("a", model.TableSchedules)
	b := hub.Subscribe("b", model.TableQtCheck)

	hub.Close()
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
	assert.Equal(t, 0, hub.Count(model.TableSchedules))
	assert.Equal(t, 0, hub.Count(model.TableQtCheck))
}

func TestChannelFor(t *testing.T) {
	assert.Equal(t, "public:schedules", realtime.ChannelFor(model.TableSchedules))
	assert.Equal(t, "realtime:public:qtcheck", realtime.ChannelFor(model.TableQtCheck))
}

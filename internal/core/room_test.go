package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomJoinReturnsSnapshot(t *testing.T) {
	room := NewRoom("r1", "<doc/>", nil, nil)

	snap, err := room.Join(NewClient("a", 4))
	require.NoError(t, err)
	assert.Equal(t, "<doc/>", snap.Document)
	assert.Equal(t, 1, snap.UsersCount)
	assert.Empty(t, snap.Locks)

	room.Lock("Task_1", "a")
	snap, err = room.Join(NewClient("b", 4))
	require.NoError(t, err)
	assert.Equal(t, 2, snap.UsersCount)
	assert.Equal(t, map[string]string{"Task_1": "a"}, snap.Locks)
}

func TestRoomJoinDeliversInitToJoiner(t *testing.T) {
	room := NewRoom("r1", "<doc/>", nil, nil)
	a := NewClient("a", 4)

	_, err := room.Join(a)
	require.NoError(t, err)

	ev := mustEvent(t, a.Events(), EventInit)
	assert.Equal(t, "a", ev.SelfID)
	assert.Equal(t, "<doc/>", ev.Document)
	assert.Equal(t, 1, ev.UsersCount)
	assert.NotNil(t, ev.Locks)
}

func TestRoomLeaveReleasesOnlyOwnLocks(t *testing.T) {
	room := NewRoom("r1", "<doc/>", nil, nil)
	a, b := NewClient("a", 4), NewClient("b", 4)
	_, _ = room.Join(a)
	_, _ = room.Join(b)

	room.Lock("Task_2", "a")
	room.Lock("Task_1", "a")
	room.Lock("Gateway_1", "b")

	released, count := room.Leave(a)
	assert.Equal(t, []string{"Task_1", "Task_2"}, released)
	assert.Equal(t, 1, count)
	assert.Equal(t, map[string]string{"Gateway_1": "b"}, room.Locks())
}

func TestRoomLeaveIsIdempotent(t *testing.T) {
	room := NewRoom("r1", "<doc/>", nil, nil)
	a, b := NewClient("a", 4), NewClient("b", 4)
	_, _ = room.Join(a)
	_, _ = room.Join(b)
	room.Lock("Task_1", "a")

	_, count := room.Leave(a)
	require.Equal(t, 1, count)

	released, count := room.Leave(a)
	assert.Empty(t, released)
	assert.Equal(t, 1, count)
}

func TestRoomLockLastWriterWins(t *testing.T) {
	room := NewRoom("r1", "<doc/>", nil, nil)

	assert.True(t, room.Lock("Task_1", "a"))
	assert.True(t, room.Lock("Task_1", "b"))
	assert.Equal(t, map[string]string{"Task_1": "b"}, room.Locks())

	assert.False(t, room.Lock("", "a"))
	assert.Len(t, room.Locks(), 1)
}

func TestRoomUnlockRequiresHolder(t *testing.T) {
	room := NewRoom("r1", "<doc/>", nil, nil)
	room.Lock("Task_1", "a")

	assert.False(t, room.Unlock("Task_1", "b"))
	assert.False(t, room.Unlock("Task_9", "a"))
	assert.False(t, room.Unlock("", "a"))
	assert.Equal(t, map[string]string{"Task_1": "a"}, room.Locks())

	assert.True(t, room.Unlock("Task_1", "a"))
	assert.Empty(t, room.Locks())
}

func TestRoomUpdateDocument(t *testing.T) {
	room := NewRoom("r1", "<doc/>", nil, nil)
	room.Lock("Task_1", "a")

	locks, ok := room.UpdateDocument("", "a")
	assert.False(t, ok)
	assert.Nil(t, locks)
	assert.Equal(t, "<doc/>", room.Document())

	locks, ok = room.UpdateDocument("<doc v=\"2\"/>", "b")
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"Task_1": "a"}, locks)
	assert.Equal(t, "<doc v=\"2\"/>", room.Document())
}

func TestRoomLocksSnapshotIsCopy(t *testing.T) {
	room := NewRoom("r1", "<doc/>", nil, nil)
	room.Lock("Task_1", "a")

	locks := room.Locks()
	locks["Task_2"] = "mallory"
	delete(locks, "Task_1")

	assert.Equal(t, map[string]string{"Task_1": "a"}, room.Locks())
}

func TestRoomStats(t *testing.T) {
	room := NewRoom("r1", "12345", nil, nil)
	_, _ = room.Join(NewClient("a", 4))
	room.Lock("Task_1", "a")

	assert.Equal(t, RoomStats{Name: "r1", UsersCount: 1, LocksCount: 1, DocumentBytes: 5}, room.Stats())
}

func TestRoomJoinAfterCloseFails(t *testing.T) {
	room := NewRoom("r1", "<doc/>", nil, nil)
	require.True(t, room.closeIfIdle(time.Time{}))

	_, err := room.Join(NewClient("a", 4))
	assert.ErrorIs(t, err, ErrRoomClosed)
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midnight_match/internal/models"
)

func newRoomFixture(t *testing.T) (*RoomGateway, *fakeSessionRepo) {
	t.Helper()

	sessions := newFakeSessionRepo()
	gateway := NewRoomGateway(sessions)

	session := &models.Session{
		SessionID: "sess_room",
		UserAID:   1,
		UserBID:   2,
		Community: "CollegeA",
		Status:    models.SessionActive,
		StartedAt: time.Now(),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	require.NoError(t, sessions.Create(session))
	return gateway, sessions
}

func TestRelayMessageReachesBothMembers(t *testing.T) {
	gateway, sessions := newRoomFixture(t)
	clientA := registerTestClient(gateway, 1)
	clientB := registerTestClient(gateway, 2)
	gateway.BindRoom("sess_room", 1, 2)

	require.NoError(t, gateway.RelayMessage(1, "晚安"))

	// 雙方都收到帶發送者與伺服器時間戳的消息
	for _, client := range []*Client{clientA, clientB} {
		messages := eventsOfType(drainEvents(client), EventMessage)
		require.Len(t, messages, 1)
		assert.Equal(t, uint(1), messages[0].SenderID)
		assert.Equal(t, "晚安", messages[0].Content)
		assert.NotNil(t, messages[0].Timestamp)
	}

	// 消息附加到會話的對話記錄
	session, err := sessions.FindBySessionID("sess_room")
	require.NoError(t, err)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "晚安", session.Messages[0].Content)
}

func TestRelayMessageOutsideRoom(t *testing.T) {
	gateway, _ := newRoomFixture(t)
	registerTestClient(gateway, 3)

	err := gateway.RelayMessage(3, "hello?")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReconnectRejoinsRoom(t *testing.T) {
	gateway, _ := newRoomFixture(t)
	clientA := registerTestClient(gateway, 1)
	registerTestClient(gateway, 2)
	gateway.BindRoom("sess_room", 1, 2)

	// 斷線後房間成員資格保留，重連回到原房間
	gateway.unregister(clientA)
	assert.False(t, gateway.IsOnline(1))

	reconnected := registerTestClient(gateway, 1)
	sessionID, ok := gateway.RoomOf(1)
	require.True(t, ok)
	assert.Equal(t, "sess_room", sessionID)

	require.NoError(t, gateway.RelayMessage(2, "還在嗎"))
	messages := eventsOfType(drainEvents(reconnected), EventMessage)
	require.Len(t, messages, 1)
}

func TestBindRoomLeavesLobby(t *testing.T) {
	gateway, _ := newRoomFixture(t)
	registerTestClient(gateway, 1)
	registerTestClient(gateway, 2)

	gateway.JoinLobby("CollegeA", 1)
	gateway.JoinLobby("CollegeA", 2)
	gateway.BindRoom("sess_room", 1, 2)

	gateway.mu.RLock()
	defer gateway.mu.RUnlock()
	assert.Empty(t, gateway.lobbies["CollegeA"])
}

func TestRegisterReplacesStaleConnection(t *testing.T) {
	gateway, _ := newRoomFixture(t)
	stale := registerTestClient(gateway, 1)

	fresh := &Client{UserID: 1, SendChan: make(chan *Event, 8), done: make(chan struct{})}
	gateway.register(fresh)

	// 舊連線立刻收到取代信號，不必等到下一次心跳
	select {
	case <-stale.done:
	default:
		t.Fatal("stale client was not signalled on replacement")
	}

	// 事件投遞改走新連線
	assert.True(t, gateway.IsOnline(1))
	gateway.SendToUser(1, NewTimeUpEvent("sess_room"))
	assert.Len(t, drainEvents(fresh), 1)
	assert.Empty(t, drainEvents(stale))
}

func TestBroadcastRoomSkipsOffline(t *testing.T) {
	gateway, _ := newRoomFixture(t)
	clientA := registerTestClient(gateway, 1)
	gateway.BindRoom("sess_room", 1, 2)

	// u2 不在線：廣播只送達 u1，不報錯
	gateway.BroadcastRoom("sess_room", NewTimeUpEvent("sess_room"))

	timeUps := eventsOfType(drainEvents(clientA), EventTimeUp)
	require.Len(t, timeUps, 1)
	assert.Equal(t, "sess_room", timeUps[0].SessionID)
}

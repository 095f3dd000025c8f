package meet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/xynexa/collab-server/internal/testutil"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateRoom(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreateRoomCode(roomId string) (string, error) {
	args := m.Called(roomId)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) RoomExists(roomId string) (bool, error) {
	args := m.Called(roomId)
	return args.Bool(0), args.Error(1)
}

// newTestBridge creates a Bridge with predictable connection ids.
func newTestBridge(t *testing.T, p Provider) *Bridge {
	b := NewBridge(testutil.TestLogger(t), p)

	var n int
	b.newConnId = func() (string, error) {
		n++
		return "conn-" + strconv.Itoa(n), nil
	}
	return b
}

// dialBridge serves the bridge over a real websocket and returns the
// test-side connection.
func dialBridge(t *testing.T, b *Bridge) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		client, err := b.NewClient(conn)
		if err != nil {
			conn.Close()
			return
		}

		go client.Write()
		go client.Read()
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial bridge: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

type wireEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

func sendEvent(t *testing.T, conn *websocket.Conn, name string, data any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"event": name, "data": data}); err != nil {
		t.Fatalf("failed to send %s event: %v", name, err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var ev wireEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	return ev
}

func createTestRoom(t *testing.T, conn *websocket.Conn, name string) string {
	t.Helper()

	sendEvent(t, conn, EventCreateRoom, CreateRoomPayload{Name: name})
	ev := readEvent(t, conn)
	if ev.Name != EventRoomCreated {
		t.Fatalf("expected %s event, got %s", EventRoomCreated, ev.Name)
	}

	var created RoomCreated
	if err := json.Unmarshal(ev.Data, &created); err != nil {
		t.Fatalf("failed to decode RoomCreated payload: %v", err)
	}
	return created.RoomCode
}

func TestBridgeCreateRoom(t *testing.T) {
	t.Run("successful create", func(t *testing.T) {
		p := &mockProvider{}
		defer p.AssertExpectations(t)
		p.On("CreateRoom", mock.AnythingOfType("string")).Return("room-123", nil).Once()
		p.On("CreateRoomCode", "room-123").Return("abc-defg-hij", nil).Once()

		b := newTestBridge(t, p)
		conn := dialBridge(t, b)

		sendEvent(t, conn, EventCreateRoom, CreateRoomPayload{Name: "Standup"})

		ev := readEvent(t, conn)
		assert.Equal(t, EventRoomCreated, ev.Name, "expected a RoomCreated event")

		var created RoomCreated
		assert.NoError(t, json.Unmarshal(ev.Data, &created))
		assert.Equal(t, "abc-defg-hij", created.RoomCode, "expected the provider room code")
		assert.Equal(t, "Standup", created.Name, "expected the requested name echoed back")

		// the creator is on the roster
		sendEvent(t, conn, EventGetRoomUsers, "abc-defg-hij")
		ev = readEvent(t, conn)
		assert.Equal(t, EventUpdatedRoomUser, ev.Name)

		var users []RoomUser
		assert.NoError(t, json.Unmarshal(ev.Data, &users))
		if assert.Len(t, users, 1, "expected the creator on the roster") {
			assert.Equal(t, "conn-1", users[0].SocketId)
			assert.Equal(t, "Standup", users[0].Name)
		}
	})

	t.Run("provider room creation fails", func(t *testing.T) {
		p := &mockProvider{}
		defer p.AssertExpectations(t)
		p.On("CreateRoom", mock.AnythingOfType("string")).Return("", assert.AnError).Once()

		b := newTestBridge(t, p)
		conn := dialBridge(t, b)

		sendEvent(t, conn, EventCreateRoom, CreateRoomPayload{})

		ev := readEvent(t, conn)
		assert.Equal(t, EventRoomCreationError, ev.Name)

		var msg string
		assert.NoError(t, json.Unmarshal(ev.Data, &msg))
		assert.Equal(t, "Failed to create room", msg)
	})

	t.Run("room code generation fails", func(t *testing.T) {
		p := &mockProvider{}
		defer p.AssertExpectations(t)
		p.On("CreateRoom", mock.AnythingOfType("string")).Return("room-123", nil).Once()
		p.On("CreateRoomCode", "room-123").Return("", assert.AnError).Once()

		b := newTestBridge(t, p)
		conn := dialBridge(t, b)

		sendEvent(t, conn, EventCreateRoom, CreateRoomPayload{})

		ev := readEvent(t, conn)
		assert.Equal(t, EventRoomCreationError, ev.Name)

		var msg string
		assert.NoError(t, json.Unmarshal(ev.Data, &msg))
		assert.Equal(t, "Failed to generate room code", msg)
	})
}

func TestBridgeJoinRoom(t *testing.T) {
	t.Run("successful join", func(t *testing.T) {
		p := &mockProvider{}
		defer p.AssertExpectations(t)
		p.On("CreateRoom", mock.AnythingOfType("string")).Return("room-123", nil).Once()
		p.On("CreateRoomCode", "room-123").Return("abc-defg-hij", nil).Once()
		p.On("RoomExists", "room-123").Return(true, nil).Once()

		b := newTestBridge(t, p)
		creator := dialBridge(t, b)
		joiner := dialBridge(t, b)

		code := createTestRoom(t, creator, "Standup")

		sendEvent(t, joiner, EventJoinRoom, JoinRoomPayload{
			RoomId:   code,
			UserData: UserData{Name: "Grace", Email: "grace@example.com"},
		})

		ev := readEvent(t, joiner)
		assert.Equal(t, EventRoomJoined, ev.Name, "expected the join confirmation first")

		var joinedCode string
		assert.NoError(t, json.Unmarshal(ev.Data, &joinedCode))
		assert.Equal(t, code, joinedCode)

		ev = readEvent(t, joiner)
		assert.Equal(t, EventUpdatedRoomUser, ev.Name, "expected the roster update")

		var users []RoomUser
		assert.NoError(t, json.Unmarshal(ev.Data, &users))
		assert.Len(t, users, 2, "expected both members on the roster")

		// the creator receives the same roster update
		ev = readEvent(t, creator)
		assert.Equal(t, EventUpdatedRoomUser, ev.Name)
	})

	t.Run("invalid room code", func(t *testing.T) {
		p := &mockProvider{}
		defer p.AssertExpectations(t)

		b := newTestBridge(t, p)
		conn := dialBridge(t, b)

		sendEvent(t, conn, EventJoinRoom, JoinRoomPayload{RoomId: "nope"})

		ev := readEvent(t, conn)
		assert.Equal(t, EventRoomJoinError, ev.Name)

		var msg string
		assert.NoError(t, json.Unmarshal(ev.Data, &msg))
		assert.Equal(t, "Invalid room code", msg)
	})

	t.Run("provider room gone", func(t *testing.T) {
		p := &mockProvider{}
		defer p.AssertExpectations(t)
		p.On("CreateRoom", mock.AnythingOfType("string")).Return("room-123", nil).Once()
		p.On("CreateRoomCode", "room-123").Return("abc-defg-hij", nil).Once()
		p.On("RoomExists", "room-123").Return(false, nil).Once()

		b := newTestBridge(t, p)
		creator := dialBridge(t, b)
		joiner := dialBridge(t, b)

		code := createTestRoom(t, creator, "Standup")

		sendEvent(t, joiner, EventJoinRoom, JoinRoomPayload{RoomId: code})

		ev := readEvent(t, joiner)
		assert.Equal(t, EventRoomJoinError, ev.Name)

		var msg string
		assert.NoError(t, json.Unmarshal(ev.Data, &msg))
		assert.Equal(t, "Room not found", msg)
	})

	t.Run("provider check fails", func(t *testing.T) {
		p := &mockProvider{}
		defer p.AssertExpectations(t)
		p.On("CreateRoom", mock.AnythingOfType("string")).Return("room-123", nil).Once()
		p.On("CreateRoomCode", "room-123").Return("abc-defg-hij", nil).Once()
		p.On("RoomExists", "room-123").Return(false, assert.AnError).Once()

		b := newTestBridge(t, p)
		creator := dialBridge(t, b)
		joiner := dialBridge(t, b)

		code := createTestRoom(t, creator, "Standup")

		sendEvent(t, joiner, EventJoinRoom, JoinRoomPayload{RoomId: code})

		ev := readEvent(t, joiner)
		assert.Equal(t, EventRoomJoinError, ev.Name)

		var msg string
		assert.NoError(t, json.Unmarshal(ev.Data, &msg))
		assert.Equal(t, "Failed to join room", msg)
	})
}

func TestBridgeGetRoomUsersUnknownRoom(t *testing.T) {
	p := &mockProvider{}
	defer p.AssertExpectations(t)

	b := newTestBridge(t, p)
	conn := dialBridge(t, b)

	sendEvent(t, conn, EventGetRoomUsers, "nope")

	ev := readEvent(t, conn)
	assert.Equal(t, EventUpdatedRoomUser, ev.Name)
	assert.JSONEq(t, `[]`, string(ev.Data), "expected an empty roster, not null")
}

func TestBridgeSentMessage(t *testing.T) {
	p := &mockProvider{}
	defer p.AssertExpectations(t)
	p.On("CreateRoom", mock.AnythingOfType("string")).Return("room-123", nil).Once()
	p.On("CreateRoomCode", "room-123").Return("abc-defg-hij", nil).Once()
	p.On("RoomExists", "room-123").Return(true, nil).Once()

	b := newTestBridge(t, p)
	creator := dialBridge(t, b)
	joiner := dialBridge(t, b)

	code := createTestRoom(t, creator, "Standup")

	sendEvent(t, joiner, EventJoinRoom, JoinRoomPayload{RoomId: code, UserData: UserData{Name: "Grace"}})
	readEvent(t, joiner) // RoomJoined
	readEvent(t, joiner) // roster update
	readEvent(t, creator)

	sendEvent(t, joiner, EventSentMessage, SentMessagePayload{
		Room:       code,
		Message:    "hello room",
		SenderName: "Grace",
	})

	for _, conn := range []*websocket.Conn{creator, joiner} {
		ev := readEvent(t, conn)
		assert.Equal(t, EventReceiveMessage, ev.Name, "expected the room message")

		var msg RoomMessage
		assert.NoError(t, json.Unmarshal(ev.Data, &msg))
		assert.Equal(t, "conn-2", msg.Sender, "expected the sender's socket id")
		assert.Equal(t, "Grace", msg.SenderName)
		assert.Equal(t, "hello room", msg.Message)
	}
}

func TestBridgeDisconnectCleansRoster(t *testing.T) {
	p := &mockProvider{}
	defer p.AssertExpectations(t)
	p.On("CreateRoom", mock.AnythingOfType("string")).Return("room-123", nil).Once()
	p.On("CreateRoomCode", "room-123").Return("abc-defg-hij", nil).Once()
	p.On("RoomExists", "room-123").Return(true, nil).Once()

	b := newTestBridge(t, p)
	creator := dialBridge(t, b)
	joiner := dialBridge(t, b)

	code := createTestRoom(t, creator, "Standup")

	sendEvent(t, joiner, EventJoinRoom, JoinRoomPayload{RoomId: code, UserData: UserData{Name: "Grace"}})
	readEvent(t, joiner)
	readEvent(t, joiner)
	readEvent(t, creator)

	joiner.Close()

	ev := readEvent(t, creator)
	assert.Equal(t, EventUpdatedRoomUser, ev.Name, "expected a roster update after the disconnect")

	var users []RoomUser
	assert.NoError(t, json.Unmarshal(ev.Data, &users))
	if assert.Len(t, users, 1, "expected only the creator left") {
		assert.Equal(t, "conn-1", users[0].SocketId)
	}
}

package meet

import (
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teris-io/shortid"
	"github.com/xynexa/collab-server/internal/gateway"
)

// Inbound event names. The meet namespace keeps the mixed casing its clients
// already send.
const (
	EventCreateRoom   = "createRoom"
	EventJoinRoom     = "JoinRoom"
	EventGetRoomUsers = "getRoomUsers"
	EventSentMessage  = "sentMessage"
)

// Outbound event names.
const (
	EventRoomCreated       = "RoomCreated"
	EventRoomCreationError = "RoomCreationError"
	EventRoomJoined        = "RoomJoined"
	EventRoomJoinError     = "RoomJoinError"
	EventUpdatedRoomUser   = "updatedRoomUser"
	EventReceiveMessage    = "receiveMessage"
)

type CreateRoomPayload struct {
	Name      string `json:"name,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type JoinRoomPayload struct {
	RoomId   string   `json:"roomId"`
	UserData UserData `json:"userData"`
}

type UserData struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Photo string `json:"photo,omitempty"`
}

type SentMessagePayload struct {
	Room         string `json:"room"`
	Message      string `json:"message"`
	SenderName   string `json:"senderName"`
	SenderEmail  string `json:"senderEmail"`
	Photo        string `json:"photo,omitempty"`
	ReceiverName string `json:"receiverName,omitempty"`
}

type RoomUser struct {
	SocketId string `json:"socketId"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Photo    string `json:"photo,omitempty"`
}

type RoomCreated struct {
	RoomCode  string `json:"roomCode"`
	Name      string `json:"name,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type RoomMessage struct {
	Sender     string `json:"sender"`
	SenderName string `json:"senderName"`
	Photo      string `json:"photo,omitempty"`
	Message    string `json:"message"`
}

// Bridge proxies room creation and joining to the external video provider
// and keeps a per-room roster in memory. Same pattern as the chat gateway
// against a different collaborator, in an isolated namespace.
type Bridge struct {
	log      *log.Logger
	registry *gateway.Registry
	provider Provider

	mu sync.Mutex
	// room code -> provider room id
	roomIds map[string]string
	// room code -> roster
	roomUsers map[string][]RoomUser

	// newConnId is overridable in tests
	newConnId func() (string, error)
}

func NewBridge(logger *log.Logger, provider Provider) *Bridge {
	return &Bridge{
		log:       logger,
		registry:  gateway.NewRegistry(),
		provider:  provider,
		roomIds:   make(map[string]string),
		roomUsers: make(map[string][]RoomUser),
		newConnId: shortid.Generate,
	}
}

func (b *Bridge) NewClient(conn *websocket.Conn) (*gateway.Client, error) {
	id, err := b.newConnId()
	if err != nil {
		return nil, err
	}

	c := gateway.NewClient(id, conn, b, b.log)
	b.registry.AddClient(c)
	b.log.Printf("meet client connected: %s", id)
	return c, nil
}

func (b *Bridge) HandleEvent(c *gateway.Client, name string, data json.RawMessage) {
	switch name {
	case EventCreateRoom:
		b.handleCreateRoom(c, data)
	case EventJoinRoom:
		b.handleJoinRoom(c, data)
	case EventGetRoomUsers:
		b.handleGetRoomUsers(c, data)
	case EventSentMessage:
		b.handleSentMessage(c, data)
	default:
		b.log.Printf("unknown meet event %q from connection %s", name, c.Id())
	}
}

// HandleDisconnect removes the socket from every roster, drops rooms that
// emptied out along with their code mapping, and notifies remaining members.
func (b *Bridge) HandleDisconnect(c *gateway.Client) {
	b.log.Printf("meet client disconnected: %s", c.Id())

	b.mu.Lock()
	updated := make(map[string][]RoomUser)
	for code, users := range b.roomUsers {
		kept := users[:0:0]
		for _, u := range users {
			if u.SocketId != c.Id() {
				kept = append(kept, u)
			}
		}
		if len(kept) == len(users) {
			continue
		}

		if len(kept) == 0 {
			delete(b.roomUsers, code)
			delete(b.roomIds, code)
		} else {
			b.roomUsers[code] = kept
			updated[code] = kept
		}
	}
	b.mu.Unlock()

	b.registry.RemoveClient(c)

	for code, users := range updated {
		b.registry.EmitRoom(code, gateway.NewEvent(EventUpdatedRoomUser, users))
	}
}

func (b *Bridge) handleCreateRoom(c *gateway.Client, data json.RawMessage) {
	var payload CreateRoomPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			c.QueueEvent(gateway.NewEvent(EventRoomCreationError, "Failed to create room"))
			return
		}
	}

	roomId, err := b.provider.CreateRoom(fmt.Sprintf("room-%s-%d", c.Id(), time.Now().UnixMilli()))
	if err != nil {
		b.log.Printf("error creating provider room: %v", err)
		c.QueueEvent(gateway.NewEvent(EventRoomCreationError, "Failed to create room"))
		return
	}

	roomCode, err := b.provider.CreateRoomCode(roomId)
	if err != nil {
		b.log.Printf("error generating room code: %v", err)
		c.QueueEvent(gateway.NewEvent(EventRoomCreationError, "Failed to generate room code"))
		return
	}

	b.mu.Lock()
	b.roomIds[roomCode] = roomId
	b.roomUsers[roomCode] = []RoomUser{{
		SocketId: c.Id(),
		Name:     payload.Name,
	}}
	b.mu.Unlock()

	b.registry.Join(roomCode, c)

	c.QueueEvent(gateway.NewEvent(EventRoomCreated, RoomCreated{
		RoomCode:  roomCode,
		Name:      payload.Name,
		Timestamp: payload.Timestamp,
	}))
}

func (b *Bridge) handleJoinRoom(c *gateway.Client, data json.RawMessage) {
	var payload JoinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomId == "" {
		c.QueueEvent(gateway.NewEvent(EventRoomJoinError, "Invalid room code"))
		return
	}

	// clients join by room code, not by the provider's room id
	b.mu.Lock()
	roomId, ok := b.roomIds[payload.RoomId]
	b.mu.Unlock()
	if !ok {
		c.QueueEvent(gateway.NewEvent(EventRoomJoinError, "Invalid room code"))
		return
	}

	exists, err := b.provider.RoomExists(roomId)
	if err != nil {
		b.log.Printf("error checking provider room %s: %v", roomId, err)
		c.QueueEvent(gateway.NewEvent(EventRoomJoinError, "Failed to join room"))
		return
	}
	if !exists {
		c.QueueEvent(gateway.NewEvent(EventRoomJoinError, "Room not found"))
		return
	}

	b.mu.Lock()
	b.roomUsers[payload.RoomId] = append(b.roomUsers[payload.RoomId], RoomUser{
		SocketId: c.Id(),
		Name:     payload.UserData.Name,
		Email:    payload.UserData.Email,
		Photo:    payload.UserData.Photo,
	})
	users := slices.Clone(b.roomUsers[payload.RoomId])
	b.mu.Unlock()

	b.registry.Join(payload.RoomId, c)

	c.QueueEvent(gateway.NewEvent(EventRoomJoined, payload.RoomId))
	b.registry.EmitRoom(payload.RoomId, gateway.NewEvent(EventUpdatedRoomUser, users))
}

func (b *Bridge) handleGetRoomUsers(c *gateway.Client, data json.RawMessage) {
	var roomCode string
	if err := json.Unmarshal(data, &roomCode); err != nil {
		return
	}

	b.mu.Lock()
	users := slices.Clone(b.roomUsers[roomCode])
	b.mu.Unlock()

	if users == nil {
		users = []RoomUser{}
	}
	c.QueueEvent(gateway.NewEvent(EventUpdatedRoomUser, users))
}

// handleSentMessage is pure fan-out; meet rooms never persist chat.
func (b *Bridge) handleSentMessage(c *gateway.Client, data json.RawMessage) {
	var payload SentMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Room == "" {
		return
	}

	b.registry.EmitRoom(payload.Room, gateway.NewEvent(EventReceiveMessage, RoomMessage{
		Sender:     c.Id(),
		SenderName: payload.SenderName,
		Photo:      payload.Photo,
		Message:    payload.Message,
	}))
}

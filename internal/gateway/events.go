package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xynexa/collab-server/internal/types"
)

// Inbound event names.
const (
	EventJoin             = "join"
	EventUserOffline      = "user-offline"
	EventJoinUserRoom     = "joinUserRoom"
	EventLeaveUserRoom    = "leaveUserRoom"
	EventSendMessage      = "sendMessage"
	EventTyping           = "typing"
	EventStopTyping       = "stopTyping"
	EventMessageRead      = "messageRead"
	EventDeleteMessage    = "deleteMessage"
	EventJoinGroup        = "joinGroup"
	EventGroupMessage     = "sentGroupMessage"
	EventUpdateTaskStatus = "update-task-status"
	EventHeartbeat        = "heartbeat"
)

// Outbound event names.
const (
	EventUserOnlineStatus    = "user-online-status"
	EventOnlineUsers         = "online-users"
	EventReceiveMessage      = "receiveMessage"
	EventMessageDelivered    = "message-delivered"
	EventMessageDeleted      = "messageDeleted"
	EventReceiveGroupMessage = "receiveGroupMessage"
	EventBoardStatusUpdated  = "boardStatusUpdated"
	EventHeartbeatAck        = "heartbeat-ack"
	EventJoinConfirmed       = "join-confirmed"
	EventUserRoomJoined      = "user-room-joined"
	EventUserRoomLeft        = "user-room-left"
	EventGroupJoined         = "group-joined"
)

// Event is the wire envelope for both directions: a named event plus an
// arbitrary JSON payload.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

func NewEvent(name string, data any) *Event {
	return &Event{Name: name, Data: data}
}

// rawEvent is the inbound form of Event, with the payload left undecoded
// until the handler for the named event picks a payload type.
type rawEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

type JoinPayload struct {
	Email string `json:"email"`
}

type DirectMessagePayload struct {
	Id         string `json:"id,omitempty"`
	SenderId   string `json:"senderId"`
	ReceiverId string `json:"receiverId"`
	Text       string `json:"text,omitempty"`
}

type TypingPayload struct {
	SenderId   string `json:"senderId"`
	ReceiverId string `json:"receiverId"`
}

type MessageReadPayload struct {
	Id         string `json:"_id"`
	ReceiverId string `json:"receiverId"`
}

type DeleteMessagePayload struct {
	MessageId  string `json:"messageId"`
	ReceiverId string `json:"receiverId"`
}

type JoinGroupPayload struct {
	GroupId string `json:"groupId"`
}

// GroupMessagePayload carries the message body under either "content" or
// "newMessage" depending on the client generation; both are accepted.
type GroupMessagePayload struct {
	SenderId   string `json:"senderId"`
	GroupId    string `json:"groupId"`
	Content    string `json:"content,omitempty"`
	NewMessage string `json:"newMessage,omitempty"`
	MessageId  string `json:"messageId,omitempty"`
}

func (p GroupMessagePayload) Body() string {
	if p.Content != "" {
		return p.Content
	}
	return p.NewMessage
}

type UpdateTaskStatusPayload struct {
	BoardId   string `json:"boardId"`
	NewStatus string `json:"newStatus"`
}

type StatusChange struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

type DeliveryReceipt struct {
	MessageId   string    `json:"messageId"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

type ReadReceipt struct {
	Id string `json:"id"`
}

type MessageDeleted struct {
	MessageId string `json:"messageId"`
}

type TypingNotice struct {
	SenderId string `json:"senderId"`
}

type HeartbeatAck struct {
	ServerTime time.Time `json:"serverTime"`
}

// RelayedGroupMessage is the enriched group-chat payload: the sender's
// public profile is embedded under the senderId key, matching what chat
// clients already consume.
type RelayedGroupMessage struct {
	Id        string            `json:"_id,omitempty"`
	Sender    types.UserProfile `json:"senderId"`
	GroupId   string            `json:"groupId"`
	Message   string            `json:"message"`
	Timestamp string            `json:"timestamp"`
}

// decodeUserId accepts either a bare string id or a wrapped {"userId": id}
// object. Both shapes occur in real client traffic.
func decodeUserId(data json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return id, nil
	}

	var wrapped struct {
		UserId string `json:"userId"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return "", fmt.Errorf("decode user id: %w", err)
	}

	return wrapped.UserId, nil
}

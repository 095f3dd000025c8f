package gateway

import (
	"encoding/json"

	"github.com/xynexa/collab-server/internal/store"
	"github.com/xynexa/collab-server/internal/types"
)

// handleSendMessage relays a private chat message to the receiver's room.
// The inbound payload is forwarded verbatim so clients keep any extra fields
// they attached. Persistence is best-effort: the relay happens even when the
// store write fails. The delivery confirmation back to the sender is a
// liveness signal only, emitted when the receiver currently holds a
// user-room connection; it is not a delivery guarantee.
func (g *Gateway) handleSendMessage(c *Client, data json.RawMessage) {
	var payload DirectMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ReceiverId == "" {
		return
	}

	messageId := payload.Id
	saved, err := g.messages.CreateMessage(store.CreateMessageParams{
		SenderId:   payload.SenderId,
		ReceiverId: payload.ReceiverId,
		Text:       payload.Text,
	})
	if err != nil {
		g.log.Printf("error saving message: %v", err)
	} else if messageId == "" {
		messageId = saved.Id
	}

	g.registry.EmitRoom(payload.ReceiverId, NewEvent(EventReceiveMessage, data))
	g.stats.Incr("MessagesRelayed")

	if _, online := g.registry.UserConn(payload.ReceiverId); online {
		c.queueEvent(NewEvent(EventMessageDelivered, DeliveryReceipt{
			MessageId:   messageId,
			DeliveredAt: Now(),
		}))
	}
}

// PushServerOriginated lets REST handlers fan out a message they already
// persisted. The full stored object, generated id included, goes to the
// receiver's room exactly as handleSendMessage would emit it; nothing is
// re-persisted.
func (g *Gateway) PushServerOriginated(msg types.Message) {
	if msg.ReceiverId == "" {
		return
	}

	g.registry.EmitRoom(msg.ReceiverId, NewEvent(EventReceiveMessage, msg))
	g.stats.Incr("MessagesRelayed")
}

func (g *Gateway) handleMessageRead(data json.RawMessage) {
	var payload MessageReadPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Id == "" {
		return
	}

	if err := g.messages.MarkMessageRead(payload.Id); err != nil {
		g.log.Printf("error marking message as read: %v", err)
		return
	}

	if payload.ReceiverId != "" {
		g.registry.EmitRoom(payload.ReceiverId, NewEvent(EventMessageRead, ReadReceipt{Id: payload.Id}))
	}
}

func (g *Gateway) handleTyping(data json.RawMessage) {
	var payload TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ReceiverId == "" {
		return
	}

	g.registry.EmitRoom(payload.ReceiverId, NewEvent(EventTyping, TypingNotice{SenderId: payload.SenderId}))
}

func (g *Gateway) handleStopTyping(data json.RawMessage) {
	var payload TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ReceiverId == "" {
		return
	}

	g.registry.EmitRoom(payload.ReceiverId, NewEvent(EventStopTyping, nil))
}

// handleDeleteMessage is fan-out only; the REST path owns the actual delete.
func (g *Gateway) handleDeleteMessage(data json.RawMessage) {
	var payload DeleteMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.MessageId == "" || payload.ReceiverId == "" {
		return
	}

	g.registry.EmitRoom(payload.ReceiverId, NewEvent(EventMessageDeleted, MessageDeleted{MessageId: payload.MessageId}))
}

func (g *Gateway) handleJoinGroup(c *Client, data json.RawMessage) {
	var payload JoinGroupPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.GroupId == "" {
		return
	}

	g.registry.Join(payload.GroupId, c)
	g.log.Printf("connection %s joined group %s", c.id, payload.GroupId)
	c.queueEvent(NewEvent(EventGroupJoined, JoinGroupPayload{GroupId: payload.GroupId}))
}

// handleGroupMessage enriches the message with the sender's public profile
// and fans it out to the group room. A message missing any required field is
// dropped, and an unresolvable sender aborts with no emission. This path
// never persists; durable group messages go through the REST path, whose
// payload shape intentionally differs (see DESIGN.md).
func (g *Gateway) handleGroupMessage(data json.RawMessage) {
	var payload GroupMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	if payload.SenderId == "" || payload.GroupId == "" || payload.Body() == "" {
		return
	}

	sender, err := g.users.GetUserById(payload.SenderId)
	if err != nil {
		g.log.Printf("error resolving group message sender %s: %v", payload.SenderId, err)
		return
	}

	g.registry.EmitRoom(payload.GroupId, NewEvent(EventReceiveGroupMessage, RelayedGroupMessage{
		Id:        payload.MessageId,
		Sender:    sender.Profile(),
		GroupId:   payload.GroupId,
		Message:   payload.Body(),
		Timestamp: Now().Format("2006-01-02T15:04:05.000Z07:00"),
	}))
	g.stats.Incr("GroupMessagesRelayed")
}

// PushGroupMessage fans out a REST-persisted group message in its stored
// shape.
func (g *Gateway) PushGroupMessage(msg types.GroupMessage) {
	if msg.GroupId == "" {
		return
	}

	g.registry.EmitRoom(msg.GroupId, NewEvent(EventReceiveGroupMessage, msg))
	g.stats.Incr("GroupMessagesRelayed")
}

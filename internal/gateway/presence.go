package gateway

import (
	"encoding/json"

	"github.com/xynexa/collab-server/internal/types"
)

// handleJoin registers the connection as the presence holder for the email,
// overwriting any previous holder (last-connected-wins). The registry is
// mutated before the status write so the in-memory directory never waits on
// the store; the broadcast is skipped when the write fails.
func (g *Gateway) handleJoin(c *Client, data json.RawMessage) {
	var payload JoinPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Email == "" {
		return
	}

	existed := g.registry.SetPresence(payload.Email, c.id)
	g.registry.Join(payload.Email, c)
	if !existed {
		g.stats.Incr("NumOnlineUsers")
	}

	g.log.Printf("user %s is online", payload.Email)
	c.queueEvent(NewEvent(EventJoinConfirmed, JoinPayload{Email: payload.Email}))

	if err := g.users.UpdateUserStatus(payload.Email, types.StatusOnline, Now()); err != nil {
		g.log.Printf("error updating user status to online: %v", err)
		return
	}

	g.broadcastStatus(payload.Email, types.StatusOnline)
}

// handleUserOffline is the explicit, client-initiated logout path. Unknown
// emails are a no-op removal; the status write and broadcast still run.
func (g *Gateway) handleUserOffline(c *Client, data json.RawMessage) {
	var payload JoinPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Email == "" {
		return
	}

	if g.registry.ClearPresence(payload.Email) {
		g.stats.Decr("NumOnlineUsers")
	}
	g.registry.Leave(payload.Email, c)

	g.log.Printf("user %s went offline", payload.Email)

	if err := g.users.UpdateUserStatus(payload.Email, types.StatusOffline, Now()); err != nil {
		g.log.Printf("error updating user status to offline: %v", err)
		return
	}

	g.broadcastStatus(payload.Email, types.StatusOffline)
}

func (g *Gateway) handleJoinUserRoom(c *Client, data json.RawMessage) {
	userId, err := decodeUserId(data)
	if err != nil || userId == "" {
		return
	}

	g.registry.Join(userId, c)
	g.registry.SetUserConn(userId, c.id)
	g.log.Printf("connection %s joined private room %s", c.id, userId)
	c.queueEvent(NewEvent(EventUserRoomJoined, map[string]string{"userId": userId}))
}

func (g *Gateway) handleLeaveUserRoom(c *Client, data json.RawMessage) {
	userId, err := decodeUserId(data)
	if err != nil || userId == "" {
		return
	}

	g.registry.Leave(userId, c)
	g.registry.ClearUserConn(userId)
	g.log.Printf("connection %s left private room %s", c.id, userId)
	c.queueEvent(NewEvent(EventUserRoomLeft, map[string]string{"userId": userId}))
}

// broadcastStatus pushes the status change and a refreshed online-email list
// to every connection. The list is read after any store write has settled so
// that interleaved joins and offlines for other keys are reflected.
func (g *Gateway) broadcastStatus(email, status string) {
	g.registry.Broadcast(NewEvent(EventUserOnlineStatus, StatusChange{Email: email, Status: status}))
	g.registry.Broadcast(NewEvent(EventOnlineUsers, g.registry.OnlineEmails()))
}

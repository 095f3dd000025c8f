package gateway

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teris-io/shortid"
	"github.com/xynexa/collab-server/internal/stats"
	"github.com/xynexa/collab-server/internal/store"
	"github.com/xynexa/collab-server/internal/types"
)

// UserStore is the gateway's view of the external user collaborator.
type UserStore interface {
	GetUserById(id string) (types.User, error)
	UpdateUserStatus(email, status string, lastActive time.Time) error
}

// MessageStore is the gateway's view of the external message collaborator.
type MessageStore interface {
	CreateMessage(params store.CreateMessageParams) (types.Message, error)
	MarkMessageRead(messageId string) error
}

// BoardStore is the gateway's view of the external board collaborator.
type BoardStore interface {
	UpdateBoardStatus(boardId, status string) (*types.Board, error)
}

// Gateway is the realtime presence and messaging core. All persistence calls
// are best-effort side effects: a failure is logged, never surfaced to the
// sending client and never allowed to crash a connection.
type Gateway struct {
	log      *log.Logger
	registry *Registry
	users    UserStore
	messages MessageStore
	boards   BoardStore
	stats    stats.StatsProvider
	// newConnId is overridable in tests
	newConnId func() (string, error)
}

func NewGateway(logger *log.Logger, users UserStore, messages MessageStore, boards BoardStore, su stats.StatsProvider) *Gateway {
	su.RegisterMetric("NumConnections")
	su.RegisterMetric("NumOnlineUsers")
	su.RegisterMetric("MessagesRelayed")
	su.RegisterMetric("GroupMessagesRelayed")
	su.RegisterMetric("BoardBroadcasts")

	return &Gateway{
		log:       logger,
		registry:  NewRegistry(),
		users:     users,
		messages:  messages,
		boards:    boards,
		stats:     su,
		newConnId: shortid.Generate,
	}
}

// NewClient registers a fresh connection in the registry and returns the
// client whose pumps the caller must start.
func (g *Gateway) NewClient(conn *websocket.Conn) (*Client, error) {
	id, err := g.newConnId()
	if err != nil {
		return nil, err
	}

	c := NewClient(id, conn, g, g.log)
	g.registry.AddClient(c)
	g.stats.Incr("NumConnections")
	g.log.Printf("client connected: %s", id)
	return c, nil
}

func (g *Gateway) Registry() *Registry {
	return g.registry
}

// OnlineEmails exposes the current online-user directory to REST handlers.
func (g *Gateway) OnlineEmails() []string {
	return g.registry.OnlineEmails()
}

func (g *Gateway) HandleEvent(c *Client, name string, data json.RawMessage) {
	switch name {
	case EventJoin:
		g.handleJoin(c, data)
	case EventUserOffline:
		g.handleUserOffline(c, data)
	case EventJoinUserRoom:
		g.handleJoinUserRoom(c, data)
	case EventLeaveUserRoom:
		g.handleLeaveUserRoom(c, data)
	case EventSendMessage:
		g.handleSendMessage(c, data)
	case EventTyping:
		g.handleTyping(data)
	case EventStopTyping:
		g.handleStopTyping(data)
	case EventMessageRead:
		g.handleMessageRead(data)
	case EventDeleteMessage:
		g.handleDeleteMessage(data)
	case EventJoinGroup:
		g.handleJoinGroup(c, data)
	case EventGroupMessage:
		g.handleGroupMessage(data)
	case EventUpdateTaskStatus:
		g.handleUpdateTaskStatus(data)
	case EventHeartbeat:
		c.queueEvent(NewEvent(EventHeartbeatAck, HeartbeatAck{ServerTime: Now()}))
	default:
		g.log.Printf("unknown event %q from connection %s", name, c.id)
	}
}

// HandleDisconnect runs when the transport drops a connection. If the
// connection held a presence entry it is taken offline; a connection whose
// entry was already superseded by a newer join leaves the newer entry intact.
func (g *Gateway) HandleDisconnect(c *Client) {
	g.log.Printf("client disconnected: %s", c.id)

	email, held := g.registry.RemovePresenceConn(c.id)
	g.registry.RemoveUserConns(c.id)
	g.registry.RemoveClient(c)
	g.stats.Decr("NumConnections")

	if !held {
		return
	}
	g.stats.Decr("NumOnlineUsers")

	if err := g.users.UpdateUserStatus(email, types.StatusOffline, Now()); err != nil {
		g.log.Printf("error updating user status on disconnect: %v", err)
		return
	}

	g.broadcastStatus(email, types.StatusOffline)
}

// Shutdown closes every connection's pumps.
func (g *Gateway) Shutdown() {
	g.registry.mu.Lock()
	clients := make([]*Client, 0, len(g.registry.clients))
	for _, c := range g.registry.clients {
		clients = append(clients, c)
	}
	g.registry.mu.Unlock()

	for _, c := range clients {
		c.stopClient()
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}

package gateway

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Handler dispatches decoded events for one namespace. The chat gateway and
// the meet bridge each implement it against their own registry.
type Handler interface {
	HandleEvent(c *Client, name string, data json.RawMessage)
	HandleDisconnect(c *Client)
}

// Client is one live duplex channel. The read pump dispatches inbound events
// to the handler in arrival order; the write pump owns the websocket writer
// and drains the send queue.
type Client struct {
	id      string
	conn    *websocket.Conn
	handler Handler
	log     *log.Logger
	send    chan *Event
	stop    chan struct{}
}

func NewClient(id string, conn *websocket.Conn, handler Handler, l *log.Logger) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		handler: handler,
		log:     l,
		send:    make(chan *Event, 256),
		stop:    make(chan struct{}),
	}
}

func (c *Client) Id() string {
	return c.id
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(ev)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
				continue
			}

			if !c.writeMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.writeMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.handler.HandleDisconnect(c)
		c.stopClient()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var ev rawEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			// malformed frames are dropped without a reply
			c.log.Println("error parsing event:", err)
			continue
		}
		if ev.Name == "" {
			continue
		}

		c.handler.HandleEvent(c, ev.Name, ev.Data)
	}
}

// QueueEvent places an event on the client's send queue without blocking;
// a full queue drops the event.
func (c *Client) QueueEvent(ev *Event) bool {
	return c.queueEvent(ev)
}

func (c *Client) queueEvent(ev *Event) bool {
	select {
	case c.send <- ev:
	default:
		c.log.Printf("send queue full for connection %q, dropping %q", c.id, ev.Name)
		return false
	}

	return true
}

func (c *Client) writeMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

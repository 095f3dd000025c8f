package gateway

import (
	"slices"
	"sync"
)

// Registry is the only mutable shared state in the gateway: it maps stable
// identities (account email, account id) to the transient connection
// currently representing them, and tracks room membership. It never owns
// connection lifecycles; connections are owned by their read/write pumps and
// the registry holds lookup references only.
type Registry struct {
	mu sync.RWMutex
	// connection id -> client
	clients map[string]*Client
	// account email -> connection id currently holding that account's
	// "online" identity (last-connected-wins)
	presence map[string]string
	// account id -> connection id, tracked independently of presence
	userConns map[string]string
	// room name -> members
	rooms map[string]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		clients:   make(map[string]*Client),
		presence:  make(map[string]string),
		userConns: make(map[string]string),
		rooms:     make(map[string]map[*Client]struct{}),
	}
}

func (r *Registry) AddClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.id] = c
}

// RemoveClient drops the client and its room memberships. Presence and
// user-index entries are cleared separately by the disconnect handler, which
// must not clear entries already superseded by a newer connection.
func (r *Registry) RemoveClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clients, c.id)
	for name, members := range r.rooms {
		if _, ok := members[c]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(r.rooms, name)
			}
		}
	}
}

func (r *Registry) Client(id string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	return c, ok
}

func (r *Registry) NumClients() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// SetPresence registers connId as the presence holder for email,
// overwriting any previous holder. Reports whether an entry already existed.
func (r *Registry) SetPresence(email, connId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, existed := r.presence[email]
	r.presence[email] = connId
	return existed
}

func (r *Registry) ClearPresence(email string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, existed := r.presence[email]
	delete(r.presence, email)
	return existed
}

// RemovePresenceConn scans for the presence entry held by connId and removes
// it. A connection whose entry was already overwritten by a newer join finds
// nothing and removes nothing. Scan cost is O(number of online users).
func (r *Registry) RemovePresenceConn(connId string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for email, id := range r.presence {
		if id == connId {
			delete(r.presence, email)
			return email, true
		}
	}
	return "", false
}

func (r *Registry) PresenceConn(email string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.presence[email]
	return id, ok
}

func (r *Registry) OnlineEmails() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	emails := make([]string, 0, len(r.presence))
	for email := range r.presence {
		emails = append(emails, email)
	}
	slices.Sort(emails)
	return emails
}

func (r *Registry) SetUserConn(userId, connId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userConns[userId] = connId
}

func (r *Registry) ClearUserConn(userId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.userConns, userId)
}

// RemoveUserConns drops every user-index entry held by connId.
func (r *Registry) RemoveUserConns(connId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userId, id := range r.userConns {
		if id == connId {
			delete(r.userConns, userId)
		}
	}
}

func (r *Registry) UserConn(userId string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.userConns[userId]
	return id, ok
}

// Join adds the client to the named room. Any string is a valid room name
// and joining an already-joined room is a no-op.
func (r *Registry) Join(room string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[room] = members
	}
	members[c] = struct{}{}
}

func (r *Registry) Leave(room string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
}

func (r *Registry) RoomSize(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// EmitRoom queues the event on every current member of the room. Emitting to
// an empty or unknown room is a no-op, not an error.
func (r *Registry) EmitRoom(room string, ev *Event) {
	r.mu.RLock()
	members := make([]*Client, 0, len(r.rooms[room]))
	for c := range r.rooms[room] {
		members = append(members, c)
	}
	r.mu.RUnlock()

	for _, c := range members {
		c.queueEvent(ev)
	}
}

// Broadcast queues the event on every connected client.
func (r *Registry) Broadcast(ev *Event) {
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	for _, c := range clients {
		c.queueEvent(ev)
	}
}

package realtime

import (
	"sync"
)

// Hub tracks live websocket connections and the rooms (conversations) they
// joined. Membership lives only in process memory: it is rebuilt by clients
// re-joining after a reconnect and is never persisted.
//
// Mutation rules: conns/rooms are written only by Attach/Detach/Join/Leave
// and read by the broadcast methods. Broadcast never blocks on a slow
// client; Connection.Send drops the connection instead.
type Hub struct {
	mu        sync.RWMutex
	conns     map[string]*Connection            // connectionID -> connection
	userConns map[string]map[string]struct{}    // userID -> set of connectionIDs
	rooms     map[string]map[string]*Connection // conversationID -> connectionID -> connection
	connRooms map[string]map[string]struct{}    // connectionID -> set of conversationIDs
}

// NewHub constructs an initialized Hub.
func NewHub() *Hub {
	return &Hub{
		conns:     make(map[string]*Connection),
		userConns: make(map[string]map[string]struct{}),
		rooms:     make(map[string]map[string]*Connection),
		connRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection and starts its write loop. A user may attach
// any number of concurrent connections.
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	h.conns[conn.ID] = conn
	set := h.userConns[conn.UserID]
	if set == nil {
		set = make(map[string]struct{})
		h.userConns[conn.UserID] = set
	}
	set[conn.ID] = struct{}{}
	h.connRooms[conn.ID] = make(map[string]struct{})
	h.mu.Unlock()

	conn.Start()
}

// Detach removes a connection and leaves every room it joined.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	h.detachLocked(conn.ID)
	h.mu.Unlock()
}

// Join adds the connection to the conversation room. Idempotent: joining a
// room twice is the same as joining it once.
func (h *Hub) Join(conversationID string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn.ID]; !ok {
		return
	}

	room := h.rooms[conversationID]
	if room == nil {
		room = make(map[string]*Connection)
		h.rooms[conversationID] = room
	}
	room[conn.ID] = conn
	h.connRooms[conn.ID][conversationID] = struct{}{}
}

// Leave removes the connection from the conversation room.
func (h *Hub) Leave(conversationID string, conn *Connection) {
	h.mu.Lock()
	h.leaveLocked(conversationID, conn.ID)
	h.mu.Unlock()
}

// InRoom reports whether the connection currently belongs to the room.
func (h *Hub) InRoom(conversationID string, conn *Connection) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[conversationID][conn.ID]
	return ok
}

// Broadcast writes payload to every connection in the conversation room,
// the sender's own connections included. Returns the number of successful
// hand-offs; failed sends are dropped, never surfaced.
func (h *Hub) Broadcast(conversationID string, payload []byte) int {
	return h.broadcast(conversationID, payload, "")
}

// BroadcastExcept is Broadcast minus one connection, used for ephemeral
// relays (typing signals) where echoing to the origin socket is noise.
func (h *Hub) BroadcastExcept(conversationID string, payload []byte, exceptConnID string) int {
	return h.broadcast(conversationID, payload, exceptConnID)
}

func (h *Hub) broadcast(conversationID string, payload []byte, exceptConnID string) int {
	h.mu.RLock()
	room := h.rooms[conversationID]
	targets := make([]*Connection, 0, len(room))
	for id, conn := range room {
		if id == exceptConnID {
			continue
		}
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range targets {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates every tracked connection and clears all state.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[string]*Connection)
	h.userConns = make(map[string]map[string]struct{})
	h.rooms = make(map[string]map[string]*Connection)
	h.connRooms = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "hub shutdown")
	}
}

func (h *Hub) detachLocked(connID string) {
	conn, ok := h.conns[connID]
	if !ok {
		return
	}
	delete(h.conns, connID)

	if set, ok := h.userConns[conn.UserID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(h.userConns, conn.UserID)
		}
	}

	for roomID := range h.connRooms[connID] {
		h.leaveLocked(roomID, connID)
	}
	delete(h.connRooms, connID)
}

func (h *Hub) leaveLocked(conversationID, connID string) {
	room := h.rooms[conversationID]
	if room == nil {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(h.rooms, conversationID)
	}
	if memberships, ok := h.connRooms[connID]; ok {
		delete(memberships, conversationID)
	}
}

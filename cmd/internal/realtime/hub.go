package realtime

import (
	"log/slog"
	"sync"
	"time"

	"gravity/cmd/identity"
)

// Room names. Every connection lands in its role room plus a private
// per-user room, so publishers can address broad or narrow audiences
// without holding client references.
const (
	RoomAdmins   = "admins"
	RoomStudents = "students"
)

func userRoom(userID string) string { return "user-" + userID }

// Hub tracks connected clients by room and fans envelopes out to them.
//
// Fan-out guarantees:
// - Register/Unregister are safe under concurrent publishes.
// - Publishing never blocks: members with a full queue are skipped.
type Hub struct {
	log *slog.Logger

	mu       sync.RWMutex
	rooms    map[string]map[string]*Client
	sessions map[string]*Client
}

// NewHub constructs a Hub instance.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:      log,
		rooms:    make(map[string]map[string]*Client),
		sessions: make(map[string]*Client),
	}
}

// Register places the client into its role room and private user room.
func (h *Hub) Register(client *Client) {
	if h == nil || client == nil || client.SessionID == "" {
		return
	}

	rooms := []string{userRoom(client.UserID)}
	switch identity.Role(client.Role) {
	case identity.RoleAdmin:
		rooms = append(rooms, RoomAdmins)
	default:
		rooms = append(rooms, RoomStudents)
	}

	h.mu.Lock()
	h.sessions[client.SessionID] = client
	for _, room := range rooms {
		members, ok := h.rooms[room]
		if !ok {
			members = make(map[string]*Client)
			h.rooms[room] = members
		}
		members[client.SessionID] = client
	}
	h.mu.Unlock()

	h.log.Info("realtime.client.join", "session_id", client.SessionID, "user_id", client.UserID, "role", client.Role)
}

// Unregister removes the session from every room and signals the client
// to shut down. Removal happens before Close so no publisher holds a
// pointer to a client mid-teardown.
func (h *Hub) Unregister(sessionID string) {
	if h == nil || sessionID == "" {
		return
	}

	h.mu.Lock()
	client := h.sessions[sessionID]
	delete(h.sessions, sessionID)
	for room, members := range h.rooms {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()

	if client != nil {
		client.Close()
		h.log.Info("realtime.client.leave", "session_id", sessionID, "user_id", client.UserID)
	}
}

// Connections reports the number of live sessions.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// PublishAll delivers an event to every connected student.
func (h *Hub) PublishAll(event string, payload any) {
	h.publishRoom(RoomStudents, event, payload)
}

// PublishAdmins delivers an event to every connected admin.
func (h *Hub) PublishAdmins(event string, payload any) {
	h.publishRoom(RoomAdmins, event, payload)
}

// PublishStudent delivers an event to one user's connections only.
func (h *Hub) PublishStudent(userID string, event string, payload any) {
	if userID == "" {
		return
	}
	h.publishRoom(userRoom(userID), event, payload)
}

func (h *Hub) publishRoom(room, event string, payload any) {
	if h == nil {
		return
	}

	env, err := newEnvelope(event, payload, time.Now().UTC())
	if err != nil {
		h.log.Error("realtime.publish.encode.fail", "event", event, "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, m := range h.rooms[room] {
		if m == nil {
			continue
		}

		select {
		case <-m.Done():
			// Skip clients that are shutting down.
			continue
		default:
		}

		select {
		case m.Send <- env:
		default:
			// Drop rather than block the whole room.
		}
	}
}

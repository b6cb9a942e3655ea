package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// client serializes writes: gorilla conns allow one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*websocket.Conn]*client
}

func NewHub() *Hub {
	log.Printf("[hub] init")
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]*client),
	}
}

func (h *Hub) Register(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]*client)
		log.Printf("[hub] create room=%s", roomID)
	}

	h.rooms[roomID][conn] = &client{conn: conn}
	log.Printf("[hub] register room=%s conns=%d", roomID, len(h.rooms[roomID]))
}

func (h *Hub) Unregister(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.rooms[roomID]
	if !ok {
		log.Printf("[hub] unregister skip: no room=%s", roomID)
		return
	}

	if _, ok := conns[conn]; ok {
		delete(conns, conn)
		conn.Close()
		log.Printf("[hub] unregister room=%s conns=%d", roomID, len(conns))
	}

	if len(conns) == 0 {
		delete(h.rooms, roomID)
		log.Printf("[hub] delete room=%s", roomID)
	}
}

// Rooms returns the number of rooms with at least one connection.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) SendToRoom(roomID string, msg []byte) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[roomID]))
	for _, c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		log.Printf("[hub][SEND-SKIP] room=%s reason=no_active_connections", roomID)
		return
	}

	for _, c := range clients {
		if err := c.write(msg); err != nil {
			log.Printf("[hub][SEND-ERR] room=%s err=%v", roomID, err)
		}
	}
}

// SendJSON marshals v and sends it to the room.
func (h *Hub) SendJSON(roomID string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[hub][SEND-ERR] room=%s json: %v", roomID, err)
		return
	}
	h.SendToRoom(roomID, b)
}

// Pump forwards job progress to the rooms until events is closed.
func (h *Hub) Pump(events <-chan ports.ProgressEvent) {
	for ev := range events {
		log.Printf("[SEND] room=%s job=%s stage=%s audio=%d visuals=%d total=%d",
			ev.RoomID, ev.JobID, ev.Stage, ev.Audio, ev.Visuals, ev.Total)
		h.SendJSON(ev.RoomID, ev)
	}
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event types
const (
	EventTableCreate     = "table_create"
	EventTableUpdate     = "table_update"
	EventTableDelete     = "table_delete"
	EventTableMove       = "table_move"
	EventSelectionChange = "selection_change"
	EventDialogChange    = "dialog_change"
	EventDragChange      = "drag_change"
	EventFloorPlanReload = "floorplan_reload"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub keeps every connected floor-plan client (conn -> role) and fans out
// broadcasts to them.
type Hub struct {
	clients map[Conn]string
	mutex   sync.Mutex
	log     *logrus.Logger
}

func New(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		clients: make(map[Conn]string),
		log:     log,
	}
}

func (h *Hub) Register(conn Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

func (h *Hub) Unregister(conn Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast sends msg to every client. A client whose write fails is dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.log.Debugf("Broadcasting %s to %d clients", msg.Event, len(h.clients))
	for conn, role := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Printf("Error sending %s to %s client: %v", msg.Event, role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

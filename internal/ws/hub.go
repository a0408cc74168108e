// Package ws implements the WebSocket fan-out that pushes live updates
// to subscribed dashboards: one message per successful data-entry
// transition, and one per completed apportionment run.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rawblock/kieswet-engine/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeWait = 5 * time.Second

// EventKind names the two event payloads the hub ever broadcasts.
type EventKind string

const (
	// EventEntryAdvanced fires after any successful data-entry
	// transition (claim, update, finalise, delete, resolve).
	EventEntryAdvanced EventKind = "entry_advanced"
	// EventApportionmentCompleted fires after a successful apportionment
	// and nomination run for an election.
	EventApportionmentCompleted EventKind = "apportionment_completed"
)

// Event is the envelope broadcast to every subscriber.
type Event struct {
	Kind             EventKind                `json:"kind"`
	ElectionID       domain.ElectionID         `json:"election_id"`
	PollingStationID *domain.PollingStationID  `json:"polling_station_id,omitempty"`
	StatusKind       *domain.DataEntryStatusKind `json:"status_kind,omitempty"`
}

// Hub holds the set of live WebSocket subscribers and the channel
// broadcasts are funneled through before fan-out.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mutex     sync.RWMutex
}

// NewHub constructs a Hub ready to have Run started on it.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 256),
	}
}

// Run drains the broadcast channel and fans each message out to every
// connected client, dropping any client whose write fails or times out.
// Call it once, in its own goroutine, for the lifetime of the process.
func (h *Hub) Run() {
	for message := range h.broadcast {
		h.mutex.RLock()
		clients := make([]*websocket.Conn, 0, len(h.clients))
		for c := range h.clients {
			clients = append(clients, c)
		}
		h.mutex.RUnlock()

		for _, client := range clients {
			client.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("ws write failed, dropping client: %v", err)
				h.mutex.Lock()
				delete(h.clients, client)
				h.mutex.Unlock()
				client.Close()
			}
		}
	}
}

// Subscribe upgrades an HTTP connection to a WebSocket and registers it
// as a subscriber. It blocks reading (and discarding) incoming frames
// purely to detect disconnects; the client never sends anything the hub
// acts on.
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	h.mutex.Lock()
	h.clients[conn] = true
	h.mutex.Unlock()

	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, conn)
			h.mutex.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends data to every connected client without blocking the
// caller; if the internal buffer is full the message is dropped and
// logged rather than stalling the request that triggered it.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		log.Printf("ws broadcast buffer full, dropping message")
	}
}

// PublishEntryAdvanced marshals and broadcasts an EventEntryAdvanced.
func (h *Hub) PublishEntryAdvanced(electionID domain.ElectionID, stationID domain.PollingStationID, status domain.DataEntryStatusKind) {
	h.publish(Event{Kind: EventEntryAdvanced, ElectionID: electionID, PollingStationID: &stationID, StatusKind: &status})
}

// PublishApportionmentCompleted marshals and broadcasts an
// EventApportionmentCompleted.
func (h *Hub) PublishApportionmentCompleted(electionID domain.ElectionID) {
	h.publish(Event{Kind: EventApportionmentCompleted, ElectionID: electionID})
}

func (h *Hub) publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal ws event: %v", err)
		return
	}
	h.Broadcast(data)
}

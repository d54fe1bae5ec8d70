// Package gateway streams completed scans to WebSocket clients.
//
// Each finished scan is fanned out as one envelope; clients can narrow
// delivery to specific timeframes with a subscribe message. On connect
// a client receives the latest stored scan per timeframe so it never
// starts from a blank screen.
package gateway

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"marketscan/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served from arbitrary origins in dev setups.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Envelope is the wire format for every hub message.
type Envelope struct {
	Type      string            `json:"type"` // "scan", "summary", "pong"
	Scan      *model.ScanResult `json:"scan,omitempty"`
	Summary   *model.Summary    `json:"summary,omitempty"`
	Initial   bool              `json:"initial,omitempty"`
	Ping      int64             `json:"ping,omitempty"`
	ServerTS  int64             `json:"server_ts,omitempty"`
	Timestamp time.Time         `json:"ts"`
}

// Hub manages WebSocket clients and scan fan-out.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	latest  map[model.Timeframe]*model.ScanResult

	// OnClientCountChange feeds the connected-clients gauge.
	OnClientCountChange func(n int)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		latest:  make(map[model.Timeframe]*model.ScanResult),
	}
}

// BroadcastScan stores scan as the latest for its timeframe and fans
// it out to every client subscribed to that timeframe. Slow clients
// are dropped rather than allowed to stall the broadcast.
func (h *Hub) BroadcastScan(scan *model.ScanResult) {
	env := Envelope{Type: "scan", Scan: scan, Timestamp: time.Now().UTC()}
	tf := scan.Filters.Timeframe

	h.mu.Lock()
	h.latest[tf] = scan
	h.mu.Unlock()

	// Enqueue while holding the read lock so removeClient cannot close
	// a send queue mid-broadcast. Enqueue never blocks, so the lock is
	// held only for channel handoffs.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.wantsTimeframe(tf) {
			client.enqueue(env)
		}
	}
}

// HandleWS upgrades the connection and registers the client.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] ws upgrade failed: %v", err)
		return
	}
	conn.EnableWriteCompression(true)

	client := &Client{
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()
	h.notifyCount(count)

	log.Printf("[gateway] ws client connected (%d total)", count)

	go client.sendInitialState()
	go client.writePump()
	go client.readPump()
}

// removeClient unregisters a client and closes its send queue. The
// close happens under the write lock; every cross-goroutine enqueue
// holds the read lock, so a send can never race the close.
func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	count := len(h.clients)
	h.mu.Unlock()
	h.notifyCount(count)
}

// LatestScans returns a snapshot of the newest scan per timeframe.
func (h *Hub) LatestScans() map[model.Timeframe]*model.ScanResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cp := make(map[model.Timeframe]*model.ScanResult, len(h.latest))
	for tf, scan := range h.latest {
		cp[tf] = scan
	}
	return cp
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) notifyCount(n int) {
	if h.OnClientCountChange != nil {
		h.OnClientCountChange(n)
	}
}

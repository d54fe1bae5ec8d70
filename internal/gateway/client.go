package gateway

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"marketscan/internal/model"
)

// Client represents a single WebSocket peer.
type Client struct {
	conn *websocket.Conn
	send chan []byte // closed only by removeClient under the hub write lock
	hub  *Hub

	// nil timeframes means "all". Guarded by the hub mutex since the
	// hub reads it while selecting broadcast targets.
	timeframes map[model.Timeframe]bool
}

// subscribeMsg narrows delivery to a set of timeframes. An empty list
// resets the client to receiving everything.
type subscribeMsg struct {
	Type       string   `json:"type"`
	Timeframes []string `json:"timeframes"`
	Ping       int64    `json:"ping"`
}

func (c *Client) wantsTimeframe(tf model.Timeframe) bool {
	if c.timeframes == nil {
		return true
	}
	return c.timeframes[tf]
}

// enqueue hands env to the write pump without blocking. Callers on
// other goroutines must hold the hub lock (read or write) so the
// queue cannot be closed underneath the send.
func (c *Client) enqueue(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow consumer; readPump's deferred cleanup handles removal
		// once the connection is torn down.
		log.Printf("[gateway] dropping ws client with full send queue")
		c.conn.Close()
	}
}

func (c *Client) sendInitialState() {
	latest := c.hub.LatestScans()

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		// Already disconnected; the send queue may be closed.
		return
	}
	for _, scan := range latest {
		if !c.wantsTimeframe(scan.Filters.Timeframe) {
			continue
		}
		env := Envelope{Type: "scan", Scan: scan, Initial: true, Timestamp: time.Now().UTC()}
		c.enqueue(env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			// Coalesce queued messages into one frame, newline separated.
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.conn.Close()
		log.Println("[gateway] ws client disconnected")
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var sub subscribeMsg
		if json.Unmarshal(msg, &sub) != nil {
			continue
		}

		switch {
		case sub.Type == "subscribe":
			c.applySubscription(sub.Timeframes)
		case sub.Ping > 0:
			pong, _ := json.Marshal(Envelope{
				Type:     "pong",
				Ping:     sub.Ping,
				ServerTS: time.Now().UnixMilli(),
			})
			// No hub lock needed: send is closed only by this
			// goroutine's deferred removeClient.
			select {
			case c.send <- pong:
			default:
			}
		}
	}
}

func (c *Client) applySubscription(raw []string) {
	var tfs map[model.Timeframe]bool
	if len(raw) > 0 {
		tfs = make(map[model.Timeframe]bool, len(raw))
		for _, s := range raw {
			tf, err := model.ParseTimeframe(s)
			if err != nil {
				log.Printf("[gateway] ignoring bad timeframe in subscribe: %q", s)
				continue
			}
			tfs[tf] = true
		}
		if len(tfs) == 0 {
			tfs = nil
		}
	}

	c.hub.mu.Lock()
	c.timeframes = tfs
	c.hub.mu.Unlock()

	log.Printf("[gateway] ws client subscribed: timeframes=%v", raw)
}

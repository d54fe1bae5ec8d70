package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"marketscan/internal/model"
)

func startHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	waitFor(t, func() bool { return hub.ClientCount() == 1 })
	return hub, conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func testScan(id string, tf model.Timeframe) *model.ScanResult {
	return &model.ScanResult{
		ID:      id,
		Filters: model.ScanFilters{Timeframe: tf},
		Results: []*model.AnalysisResult{
			{Symbol: "BTCUSDT", TotalScore: 5, Recommendation: model.Buy},
		},
		StartedAt: time.Now().UTC(),
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// Coalesced frames are newline separated; take the first.
	if i := strings.IndexByte(string(msg), '\n'); i > 0 {
		msg = msg[:i]
	}
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return env
}

func TestBroadcastReachesClient(t *testing.T) {
	hub, conn := startHub(t)

	hub.BroadcastScan(testScan("scan-1", model.TF1h))

	env := readEnvelope(t, conn)
	if env.Type != "scan" || env.Scan == nil {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Scan.ID != "scan-1" {
		t.Errorf("scan id = %s", env.Scan.ID)
	}
	if len(env.Scan.Results) != 1 || env.Scan.Results[0].Symbol != "BTCUSDT" {
		t.Errorf("results = %+v", env.Scan.Results)
	}
}

func TestTimeframeSubscriptionFilters(t *testing.T) {
	hub, conn := startHub(t)

	sub := subscribeMsg{Type: "subscribe", Timeframes: []string{"4h"}}
	data, _ := json.Marshal(sub)
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}
	// Subscription is applied by the client's read loop.
	time.Sleep(100 * time.Millisecond)

	hub.BroadcastScan(testScan("hourly", model.TF1h))
	hub.BroadcastScan(testScan("fourhour", model.TF4h))

	env := readEnvelope(t, conn)
	if env.Scan == nil || env.Scan.ID != "fourhour" {
		t.Errorf("got %+v, want the 4h scan only", env.Scan)
	}
}

func TestInitialStateOnConnect(t *testing.T) {
	hub := NewHub()
	hub.BroadcastScan(testScan("pre-existing", model.TF1d))

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	env := readEnvelope(t, conn)
	if !env.Initial || env.Scan == nil || env.Scan.ID != "pre-existing" {
		t.Errorf("initial envelope = %+v", env)
	}
}

func TestPingPong(t *testing.T) {
	_, conn := startHub(t)

	msg, _ := json.Marshal(subscribeMsg{Ping: 1234})
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	env := readEnvelope(t, conn)
	if env.Type != "pong" || env.Ping != 1234 || env.ServerTS == 0 {
		t.Errorf("pong = %+v", env)
	}
}

func TestClientCountTracksDisconnect(t *testing.T) {
	hub := NewHub()
	var mu sync.Mutex
	var counts []int
	hub.OnClientCountChange = func(n int) {
		mu.Lock()
		counts = append(counts, n)
		mu.Unlock()
	}

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount() == 0 })

	mu.Lock()
	defer mu.Unlock()
	if len(counts) < 2 || counts[len(counts)-1] != 0 {
		t.Errorf("counts = %v, want final 0", counts)
	}
}

// A client disconnecting mid-broadcast must never panic the hub: the
// send queue is closed under the write lock, and broadcasts enqueue
// under the read lock, so the two can only run in either order, never
// interleaved.
func TestBroadcastDuringDisconnectDoesNotPanic(t *testing.T) {
	hub := NewHub()
	scan := testScan("racing", model.TF1h)

	for i := 0; i < 2000; i++ {
		c := &Client{send: make(chan []byte, 4), hub: hub}
		hub.mu.Lock()
		hub.clients[c] = true
		hub.mu.Unlock()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.BroadcastScan(scan)
		}()
		go func() {
			defer wg.Done()
			hub.removeClient(c)
		}()
		wg.Wait()
	}
}

package notify

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBroadcastReachesAllClients(t *testing.T) {
	h := NewHub(nil)
	a := h.attach()
	b := h.attach()

	h.Broadcast(Event{Type: EventStockUpdate, Payload: map[string]any{"product_id": "prd-1"}})

	for name, c := range map[string]*client{"a": a, "b": b} {
		select {
		case payload := <-c.send:
			var event Event
			if err := json.Unmarshal(payload, &event); err != nil {
				t.Fatalf("client %s: bad payload: %v", name, err)
			}
			if event.Type != EventStockUpdate {
				t.Fatalf("client %s: type = %q", name, event.Type)
			}
		default:
			t.Fatalf("client %s received nothing", name)
		}
	}
}

func TestBroadcastSkipsDetachedClient(t *testing.T) {
	h := NewHub(nil)
	a := h.attach()
	h.detach(a)

	h.Broadcast(Event{Type: EventNewLogin})
	if h.ClientCount() != 0 {
		t.Fatalf("client count = %d, want 0", h.ClientCount())
	}
	// Channel is closed on detach; a received value would be the zero payload.
	if payload, ok := <-a.send; ok {
		t.Fatalf("detached client received %q", payload)
	}
}

func TestBroadcastDoesNotBlockOnSlowClient(t *testing.T) {
	h := NewHub(nil)
	slow := h.attach()

	done := make(chan struct{})
	go func() {
		for i := 0; i < clientBuffer*3; i++ {
			h.Broadcast(Event{Type: EventTodaySales})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
	if len(slow.send) != clientBuffer {
		t.Fatalf("slow client buffer = %d, want %d", len(slow.send), clientBuffer)
	}
}

func TestServeWSDeliversEvents(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	// The attach happens during the upgrade handshake; wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if h.ClientCount() != 1 {
		t.Fatalf("client count = %d, want 1", h.ClientCount())
	}

	h.Broadcast(Event{Type: EventMonthlyRevenue, Payload: map[string]any{"revenue_cents": 120000}})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if event.Type != EventMonthlyRevenue {
		t.Fatalf("event type = %q", event.Type)
	}
}

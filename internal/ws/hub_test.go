package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rawblock/kieswet-engine/internal/domain"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/stream", hub.Subscribe)
	return httptest.NewServer(r)
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestHub_BroadcastsToSubscriber(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	server := newTestServer(t, hub)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	// Give Subscribe's registration goroutine a moment to run before
	// publishing, since registration and the test's own dial race
	// otherwise.
	time.Sleep(50 * time.Millisecond)

	electionID := domain.ElectionID{}
	hub.PublishApportionmentCompleted(electionID)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event.Kind != EventApportionmentCompleted {
		t.Errorf("kind = %q, want %q", event.Kind, EventApportionmentCompleted)
	}
}

func TestHub_BroadcastDoesNotBlockWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Broadcast([]byte("hello"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked with no subscribers and no Run goroutine started")
	}
}

func TestHub_PublishEntryAdvancedMarshalsStationAndStatus(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	server := newTestServer(t, hub)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()
	time.Sleep(50 * time.Millisecond)

	stationID := domain.PollingStationID{}
	hub.PublishEntryAdvanced(domain.ElectionID{}, stationID, domain.KindDefinitive)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event.Kind != EventEntryAdvanced {
		t.Errorf("kind = %q, want %q", event.Kind, EventEntryAdvanced)
	}
	if event.StatusKind == nil || *event.StatusKind != domain.KindDefinitive {
		t.Errorf("status kind = %v, want %q", event.StatusKind, domain.KindDefinitive)
	}
	if event.PollingStationID == nil {
		t.Error("polling station id not set")
	}
}

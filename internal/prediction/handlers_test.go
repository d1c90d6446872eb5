package prediction

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"preload-service/internal/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

func newPredictionApp(objects []catalog.Object) (*fiber.App, *Registry) {
	selector := NewSelector(&fakeCatalog{objects: objects}, SelectorConfig{RadiusMeters: 200})
	registry := NewRegistry(selector, nil, testSessionConfig())

	app := fiber.New()
	RegisterRoutes(app.Group("/predictions"), registry, selector)
	return app, registry
}

func TestPredictionPost(t *testing.T) {
	obj := objectAt(54.5001, 17.4)
	app, _ := newPredictionApp([]catalog.Object{obj})

	body, _ := json.Marshal(sampleAt(54.5, 17.4))
	req := httptest.NewRequest(http.MethodPost, "/predictions/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("predict status: %v", err)
	}

	var ids []string
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ids) != 1 || ids[0] != obj.ID.String() {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestPredictionPostInvalidSample(t *testing.T) {
	app, _ := newPredictionApp(nil)

	body, _ := json.Marshal(sampleAt(95, 17.4))
	req := httptest.NewRequest(http.MethodPost, "/predictions/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for out-of-range coordinate")
	}

	req = httptest.NewRequest(http.MethodPost, "/predictions/", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for malformed body")
	}
}

func TestPredictionWebsocketSession(t *testing.T) {
	obj := objectAt(54.5001, 17.4)
	app, registry := newPredictionApp([]catalog.Object{obj})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	defer ln.Close()

	go func() {
		_ = app.Listener(ln)
	}()
	defer func() { _ = app.Shutdown() }()

	wsURL := "ws://" + ln.Addr().String() + "/predictions/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for registry.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if registry.Len() != 1 {
		t.Fatalf("expected registered session")
	}

	sample, _ := json.Marshal(sampleAt(54.5, 17.4))
	if err := conn.WriteMessage(websocket.TextMessage, sample); err != nil {
		t.Fatalf("write error: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	var notif predictionNotification
	if err := json.Unmarshal(msg, &notif); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(notif.PredictedIDs) != 1 || notif.PredictedIDs[0] != obj.ID.String() {
		t.Fatalf("unexpected prediction: %v", notif.PredictedIDs)
	}

	// Malformed frame produces an error notification, not a close.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write error: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	var errNotif errorNotification
	if err := json.Unmarshal(msg, &errNotif); err != nil || errNotif.Error == "" {
		t.Fatalf("expected error notification, got %s", msg)
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for registry.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if registry.Len() != 0 {
		t.Fatalf("session not unregistered after disconnect")
	}
}

func TestPredictionWebsocketUpgradeRequired(t *testing.T) {
	app, _ := newPredictionApp(nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/predictions/ws", nil))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("expected non-200 for non-websocket request")
	}
}

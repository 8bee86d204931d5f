package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/internal/config"
	"github.com/Intervyou-site/intervyou/internal/realtime"
)

type received struct {
	Type    MessageType    `json:"type"`
	Data    map[string]any `json:"data"`
	Message string         `json:"message"`
}

func setupTestServer(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	logger := zap.NewNop()
	hub := NewHub(func() *realtime.Session {
		return realtime.NewSession(config.Default().Realtime, realtime.Backends{}, logger)
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(hub, c, "user-1")
	})
	srv := httptest.NewServer(e)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		srv.Close()
		cancel()
	})
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg received
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestRealtimeSessionRoundTrip(t *testing.T) {
	hub, conn := setupTestServer(t)
	frame := "data:image/png;base64," + encodePNG(t, 32, 24)

	for i := 1; i <= 3; i++ {
		if err := conn.WriteJSON(map[string]string{"type": "frame", "frame": frame}); err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}
		msg := readMessage(t, conn)
		if msg.Type != MessageTypeAnalysis {
			t.Fatalf("message type = %s (%s), want analysis", msg.Type, msg.Message)
		}
		if got := msg.Data["frame_number"]; got != float64(i) {
			t.Errorf("frame_number = %v, want %d", got, i)
		}
	}
	if hub.ActiveClients() != 1 {
		t.Errorf("active clients = %d, want 1", hub.ActiveClients())
	}

	if err := conn.WriteJSON(map[string]string{"type": "end_session"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Type != MessageTypeSummary {
		t.Fatalf("message type = %s, want summary", msg.Type)
	}
	if msg.Data["total_frames"] != float64(3) || msg.Data["duration_seconds"] != 0.1 {
		t.Errorf("summary = %v", msg.Data)
	}

	// the server closes the connection after the summary
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("ReadMessage() after summary error = %v, want normal close", err)
	}
}

func TestRealtimeSessionErrors(t *testing.T) {
	_, conn := setupTestServer(t)

	tests := []struct {
		name    string
		message string
	}{
		{"unknown type", `{"type":"hello"}`},
		{"missing frame", `{"type":"frame"}`},
		{"undecodable frame", `{"type":"frame","frame":"data:image/png;base64,aGVsbG8="}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.message)); err != nil {
				t.Fatalf("WriteMessage() error = %v", err)
			}
			msg := readMessage(t, conn)
			if msg.Type != MessageTypeError || msg.Message == "" {
				t.Errorf("reply = %+v, want an error message", msg)
			}
		})
	}

	// errors do not end the session
	if err := conn.WriteJSON(map[string]string{"type": "end_session"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Type != MessageTypeSummary || msg.Data["total_frames"] != float64(0) {
		t.Errorf("reply = %+v, want empty summary", msg)
	}
}

func TestHubUnregistersClosedConnections(t *testing.T) {
	hub, conn := setupTestServer(t)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ActiveClients() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	conn.Close()
	for hub.ActiveClients() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ActiveClients() != 0 {
		t.Errorf("active clients = %d after close, want 0", hub.ActiveClients())
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(func() *realtime.Session { return nil }, zap.NewNop())
	if hub.ActiveClients() != 0 || hub.validator == nil {
		t.Error("new hub is not empty")
	}
}

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
	"github.com/MeKo-Tech/nutrilabel/internal/roi"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WebSocketRequest asks for one label to be processed.
type WebSocketRequest struct {
	Name   string           `json:"name,omitempty"`
	Image  string           `json:"image"`
	UseROI *bool            `json:"use_roi,omitempty"`
	BBox   *roi.BoundingBox `json:"bbox,omitempty"`
}

// WebSocketMessage is every server to client frame. Type is "stage",
// "result" or "error".
type WebSocketMessage struct {
	Type      string         `json:"type"`
	RequestID string         `json:"request_id,omitempty"`
	Stage     string         `json:"stage,omitempty"`
	ElapsedMs float64        `json:"elapsed_ms,omitempty"`
	Skipped   bool           `json:"skipped,omitempty"`
	Result    *LabelResponse `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// webSocketHandler streams stage progress and then the result for each
// request message received on the connection.
func (s *Server) webSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()
	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	conn.SetReadLimit(s.maxUploadBytes()*4/3 + 1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go keepAlive(ctx, conn)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(ctx, conn, data)
		}
	}
}

func keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleWebSocketMessage(ctx context.Context, conn WebSocketConnWriter, data []byte) {
	var req WebSocketRequest
	if err := json.Unmarshal(data, &req); err != nil {
		sendWebSocket(conn, WebSocketMessage{Type: "error", Error: "failed to parse request: " + err.Error()})
		return
	}
	requestID := uuid.NewString()
	if req.Image == "" {
		sendWebSocket(conn, WebSocketMessage{Type: "error", RequestID: requestID, Error: "no image data provided"})
		return
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	in := pipeline.Input{
		Name:    req.Name,
		DataURL: req.Image,
		UseROI:  req.UseROI,
		BBox:    req.BBox,
		OnStage: func(stage string, elapsed time.Duration, skipped bool) {
			sendWebSocket(conn, WebSocketMessage{
				Type:      "stage",
				RequestID: requestID,
				Stage:     stage,
				ElapsedMs: float64(elapsed.Microseconds()) / 1000,
				Skipped:   skipped,
			})
		},
	}
	res, err := s.pipeline.Process(ctx, in)
	recordResult("websocket", res, err)
	if err != nil {
		sendWebSocket(conn, WebSocketMessage{Type: "error", RequestID: requestID, Error: err.Error()})
		return
	}
	resp := labelResponse(s.pipeline, res)
	sendWebSocket(conn, WebSocketMessage{Type: "result", RequestID: requestID, Result: &resp})
}

func sendWebSocket(conn WebSocketConnWriter, msg WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal WebSocket message", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("failed to send WebSocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

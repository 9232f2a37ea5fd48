package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DriveDeck/backend/internal/events"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/logging"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/monitoring"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/types"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Handler manages WebSocket connections
type Handler struct {
	broadcaster *events.Broadcaster
	metrics     *monitoring.Metrics
	log         *logging.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(broadcaster *events.Broadcaster, metrics *monitoring.Metrics, log *logging.Logger) *Handler {
	return &Handler{
		broadcaster: broadcaster,
		metrics:     metrics,
		log:         log,
	}
}

// HandleConnection upgrades the request and streams file events to the
// client until it disconnects. Client messages are consumed on a separate
// goroutine and funneled back here so the connection has a single writer.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(ch)

	h.send(conn, map[string]interface{}{
		"type":    "system",
		"message": "Connected to DriveDeck event stream",
	})
	h.metrics.RecordWSMessage("out", "system")

	done := make(chan struct{})
	inbound := make(chan types.WSMessage, 8)
	go h.readLoop(conn, inbound, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case evt, ok := <-ch:
			if !ok {
				return
			}
			payload, err := events.MarshalEvent(evt)
			if err != nil {
				h.log.Error("Event marshal failed", zap.Error(err))
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
			h.metrics.RecordWSMessage("out", evt.Type)

		case msg := <-inbound:
			switch msg.Type {
			case "ping":
				if err := h.send(conn, map[string]interface{}{"type": "pong"}); err != nil {
					return
				}
				h.metrics.RecordWSMessage("out", "pong")
			default:
				h.sendError(conn, "unknown message type")
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop consumes client messages until the connection drops, keeping the
// read deadline fresh through pong handling.
func (h *Handler) readLoop(conn *websocket.Conn, inbound chan<- types.WSMessage, done chan<- struct{}) {
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg types.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		h.metrics.RecordWSMessage("in", msg.Type)

		select {
		case inbound <- msg:
		default:
			// Drop chatter rather than stall the reader.
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, data interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(data)
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) error {
	return h.send(conn, map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}

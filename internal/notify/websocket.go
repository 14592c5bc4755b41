package notify

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"git.home.luguber.info/inful/hotbundle/internal/logfields"
)

const writeWait = 10 * time.Second

// wsConn serializes writes to one websocket; gorilla allows a single writer.
type wsConn struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Handler upgrades requests to websockets and registers them with the hub.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler returns the upgrade endpoint for hub. Any origin is accepted:
// the endpoint only serves a local dev server.
func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("WebSocket upgrade failed", logfields.Error(err))
		return
	}
	c := &wsConn{id: uuid.NewString(), conn: conn}
	h.hub.Register(c)
	defer func() {
		h.hub.Unregister(c)
		_ = conn.Close()
	}()

	// Inbound messages are ignored; the loop only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket closed", logfields.Client(c.id), logfields.Error(err))
			}
			return
		}
	}
}

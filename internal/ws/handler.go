package ws

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/music-timeline-game/pkg/notify"
)

const keepAliveInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, implement proper origin checking
	},
}

// SessionChecker answers whether a PIN refers to an existing session.
type SessionChecker interface {
	Exists(pin string) bool
}

// Handler serves the per-session subscription stream. Signals carry no
// game data; clients re-fetch the snapshot on every one. A keep-alive
// goes out after 30 seconds of silence so idle connections are not
// mistaken for dead.
type Handler struct {
	bus      *notify.Bus
	sessions SessionChecker
}

func NewHandler(bus *notify.Bus, sessions SessionChecker) *Handler {
	return &Handler{bus: bus, sessions: sessions}
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	// PINs are case-insensitive everywhere; the bus map is not. Normalize
	// here so a lowercase subscriber lands on the same key mutations
	// publish to.
	pin := strings.ToUpper(c.Param("pin"))
	if pin == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pin is required"})
		return
	}
	if !h.sessions.Exists(pin) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}
	defer conn.Close()

	// Subscribe before the ack so no change between ack and first wait is
	// lost. The subscription never holds a session lock.
	signals := h.bus.Subscribe(pin)
	defer h.bus.Unsubscribe(pin, signals)

	if err := conn.WriteJSON(notify.Signal{Type: notify.SignalConnected, Timestamp: time.Now()}); err != nil {
		return
	}

	// Drain reads so close frames are processed; clients have nothing to
	// say on this stream.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("WebSocket error: %v", err)
				}
				return
			}
		}
	}()

	keepAlive := time.NewTimer(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case sig := <-signals:
			if err := conn.WriteJSON(sig); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := conn.WriteJSON(notify.Signal{Type: notify.SignalKeepAlive, Timestamp: time.Now()}); err != nil {
				return
			}
		case <-done:
			return
		}

		if !keepAlive.Stop() {
			select {
			case <-keepAlive.C:
			default:
			}
		}
		keepAlive.Reset(keepAliveInterval)
	}
}

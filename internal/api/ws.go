package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// AlertsFeed upgrades the connection and subscribes it to fired triggers.
// The feed is push-only; anything the client sends is discarded.
func (h *Handler) AlertsFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf("Websocket upgrade failed: %v", err)
		return
	}

	hub := h.notifier.Hub()
	hub.Add(conn)

	// Drain reads so close frames are processed; exit evicts the subscriber.
	go func() {
		defer hub.Remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

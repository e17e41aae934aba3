package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pizza-nz/food-ordering/internal/middleware"
	"github.com/pizza-nz/food-ordering/internal/websockets"
)

type WebSocketHandler struct {
	hub      *websockets.Hub
	upgrader *websocket.Upgrader
}

func NewWebSocketHandler(hub *websockets.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		upgrader: websockets.NewUpgrader(allowedOrigins),
	}
}

// ServeWs handles GET /api/ws for proprietors
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	nickname := ""
	if user, ok := middleware.CurrentUser(c); ok {
		nickname = user.Nickname
	}

	// Upgrade writes its own error response on failure
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	websockets.ServeWs(h.hub, conn, nickname)
}

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// browsers connect from arbitrary origins, same as the HTTP CORS policy
	CheckOrigin: func(r *http.Request) bool { return true },
}

// websocket authenticates via the token query parameter (browser WebSocket
// clients cannot set an Authorization header), upgrades the connection and
// registers it for push delivery. The read loop only keeps the connection
// alive; clients are not expected to send anything.
func (h *handlers) websocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter required"})
		return
	}

	claims, err := h.users.VerifyAccessToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": tokenErrorCode(err)})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.logger.Warn(c.Request.Context(), "websocket upgrade failed", "user_id", claims.UserID, "error", err)
		return
	}

	h.registry.Connect(claims.UserID, conn)
	h.logger.Info(c.Request.Context(), "websocket connected", "user_id", claims.UserID)

	defer func() {
		h.registry.Disconnect(claims.UserID, conn)
		conn.Close()
		h.logger.Info(c.Request.Context(), "websocket disconnected", "user_id", claims.UserID)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

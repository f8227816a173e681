package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// HandleWebSocket upgrades the connection and starts the pumps. Room
// membership is established afterwards through join_room events, so one
// connection can mirror several rooms.
// GET /ws?user=alice
func (h *Hub) HandleWebSocket(c *gin.Context) {
	userID := c.Query("user")
	if userID == "" {
		userID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		Log.Warnf("websocket upgrade: %v", err)
		return
	}

	client := NewClient(userID, conn, h)
	Log.Infof("client %s connected", userID)

	go client.writePump()
	client.readPump()
}

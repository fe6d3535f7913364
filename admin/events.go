package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/difflow/sse"
)

// handleEvents streams output activity over Server-Sent Events. A client
// connects with a stable id via ?client=<id> (a random one is assigned
// otherwise). The hub matches each broadcast's glob pattern against client
// ids, so a client receives Server.BroadcastOutput(name, ...) events only
// when its id matches "output:<name>" (for example ?client=output:<name>);
// a client with an assigned random id receives no output events.
func (s *Server) handleEvents(c *gin.Context) {
	if s.hub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event stream not configured"})
		return
	}
	clientID := c.Query("client")
	if clientID == "" {
		clientID = uuid.NewString()
	}
	sse.ServeSSE(s.hub, c.Writer, c.Request, clientID)
}

// BroadcastOutput publishes data to the connected admin clients whose id
// matches the pattern "output:<name>"; other clients do not receive it.
func (s *Server) BroadcastOutput(name string, data []byte) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToPattern("output:"+name, data)
}

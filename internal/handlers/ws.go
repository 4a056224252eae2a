package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"taskfan/internal/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

type wsRequest struct {
	Action string `json:"action"`
	Scope  string `json:"scope"`
}

// HandleWebSocket upgrades the connection and ties it to a hub subscription.
// Clients subscribe and unsubscribe to scopes over the same socket; events
// for the subscribed scopes are pushed as they are broadcast. A client that
// falls behind misses events and is expected to re-fetch on reconnect.
func HandleWebSocket(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("failed to upgrade websocket: %v", err)
			return
		}
		defer ws.Close()

		sub := hub.NewSubscription()
		defer sub.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for event := range sub.C {
				if err := ws.WriteJSON(event); err != nil {
					return
				}
			}
		}()

		for {
			var req wsRequest
			if err := ws.ReadJSON(&req); err != nil {
				break
			}

			switch req.Action {
			case "subscribe":
				if req.Scope != "" {
					sub.Subscribe(req.Scope)
				}
			case "unsubscribe":
				if req.Scope != "" {
					sub.Unsubscribe(req.Scope)
				}
			}
		}

		sub.Close()
		<-done
	}
}

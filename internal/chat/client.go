package chat

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"gitlab.com/kyawswar/ledger-chat/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one websocket connection attached to the hub. The username is
// bound by the joinChat event, not by the session; sessionUser carries the
// authenticated identity for resolvers that want it.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	sessionUser string

	// Owned by the hub run loop after registration.
	username string
	joined   bool
}

// ServeWS upgrades the request and attaches the connection to the hub.
// sessionUser is the username of the authenticated session.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionUser string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &Client{
		hub:         h,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		sessionUser: sessionUser,
	}
	h.register <- c
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			logger.Log.Debug().Err(err).Msg("discarding malformed chat frame")
			continue
		}
		c.hub.inbound <- inboundEvent{client: c, env: env}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

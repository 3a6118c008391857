package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"home-services-server/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins restricted by CORS on the HTTP side
	},
}

// Client is one feed connection. Worker connections carry the category
// used for fan-out filtering; customer connections leave it empty.
type Client struct {
	Hub      *Hub
	UserID   uint
	Role     string // "customer" or "worker"
	WorkerID uint
	Category models.WorkerCategory
	Online   bool
	Conn     *websocket.Conn
	Send     chan []byte
}

func (c *Client) IsWorker() bool {
	return c.Role == "worker"
}

// serve upgrades the connection, registers the client and starts the pumps
func serve(hub *Hub, w http.ResponseWriter, r *http.Request, client *Client) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client.Hub = hub
	client.Conn = conn
	client.Send = make(chan []byte, 256)

	hub.Register <- client

	go client.writePump()
	go client.readPump()

	welcome := Event{Type: "connected", Message: "feed connected", Timestamp: time.Now()}
	if data, err := json.Marshal(welcome); err == nil {
		client.Send <- data
	}
}

// readPump consumes client messages. The feed is one-directional apart
// from ping; anything else is ignored.
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			break
		}

		var incoming struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(messageBytes, &incoming); err != nil {
			continue
		}

		if incoming.Type == "ping" {
			pong := Event{Type: "pong", Timestamp: time.Now()}
			if data, err := json.Marshal(pong); err == nil {
				select {
				case c.Send <- data:
				default:
				}
			}
		}
	}
}

// writePump pushes hub messages and keepalive pings to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

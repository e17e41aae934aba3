package websockets

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024
)

type MessageType string

const (
	TypeSubscribe MessageType = "subscribe"
	TypeError     MessageType = "error"
	TypePing      MessageType = "ping"
	TypePong      MessageType = "pong"
)

type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client is one websocket connection. A client receives every event until
// it sends a subscribe message naming the routing keys it wants.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// send is owned by the hub, which closes it on removal.
	send chan []byte

	// replies carries answers from readPump. It is never closed.
	replies chan []byte

	id string

	nickname string

	mu     sync.RWMutex
	topics map[string]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, nickname string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		replies:  make(chan []byte, 16),
		id:       uuid.NewString(),
		nickname: nickname,
	}
}

// Subscribe restricts the client to topics. An empty list restores all.
func (c *Client) Subscribe(topics []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(topics) == 0 {
		c.topics = nil
		return
	}
	c.topics = make(map[string]bool, len(topics))
	for _, topic := range topics {
		c.topics[topic] = true
	}
}

func (c *Client) subscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topics == nil || c.topics[topic]
}

// reply queues a message for this client only. Replies are dropped when
// the writer has stopped or is behind.
func (c *Client) reply(msg Message) {
	data, _ := json.Marshal(msg)
	select {
	case c.replies <- data:
	default:
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", "client_id", c.id, "error", err)
			}
			break
		}

		var wsMessage Message
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			c.reply(Message{Type: TypeError, Data: json.RawMessage(`"malformed message"`)})
			continue
		}

		switch wsMessage.Type {
		case TypeSubscribe:
			var subscribeData struct {
				Topics []string `json:"topics"`
			}
			if err := json.Unmarshal(wsMessage.Data, &subscribeData); err != nil {
				c.reply(Message{Type: TypeError, Data: json.RawMessage(`"malformed subscription"`)})
				continue
			}
			c.Subscribe(subscribeData.Topics)

		case TypePing:
			c.reply(Message{Type: TypePong})

		default:
			c.reply(Message{Type: TypeError, Data: json.RawMessage(`"unsupported message type"`)})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case message := <-c.replies:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs registers conn with hub and starts its pumps
func ServeWs(hub *Hub, conn *websocket.Conn, nickname string) {
	client := NewClient(hub, conn, nickname)

	select {
	case client.hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

package eventws

import (
	"encoding/json"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Hub fans appointment events out to the dashboards of one salon. Clients
// are grouped by owner scope, so a professional's session receives the same
// feed as the admin it works under.
type Hub struct {
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	ownerID int64
	send    chan []byte
}

type Event struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`

	ownerID int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, ownerID int64) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		ownerID: ownerID,
		send:    make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.ownerID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.ownerID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.ownerID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.ownerID)
			}
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish queues an event for every dashboard watching the owner's salon.
// It never blocks the caller: when the hub's buffer is full the event is
// dropped, since the feed is advisory and the REST API remains the source
// of truth.
func (h *Hub) Publish(ownerID int64, eventType string, payload any) {
	event := &Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ownerID:   ownerID,
	}
	select {
	case h.broadcast <- event:
	default:
		zap.L().Warn("event hub buffer full, dropping event", zap.String("type", eventType))
	}
}

func (h *Hub) deliver(event *Event) {
	encoded, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("event hub encode", zap.Error(err))
		return
	}

	set, ok := h.clients[event.ownerID]
	if !ok {
		return
	}
	for client := range set {
		select {
		case client.send <- encoded:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, event.ownerID)
	}
}

// ReadPump drains the connection until the peer closes it. The feed is
// one-way: inbound frames are discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

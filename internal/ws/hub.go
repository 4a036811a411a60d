package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub groups live connections by event id and fans queue snapshots out to
// everyone watching that event's pitch session.
type Hub struct {
	clients    map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMessage

	mu sync.RWMutex
}

type broadcastMessage struct {
	eventID uint
	payload []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMessage),
	}
}

// Run processes the hub's channels. Call it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.eventID] == nil {
				h.clients[client.eventID] = make(map[*Client]bool)
			}
			h.clients[client.eventID][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.eventID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.eventID)
					}
				}
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			// Write lock: dropping a slow consumer mutates the client set.
			h.mu.Lock()
			for client := range h.clients[message.eventID] {
				select {
				case client.send <- message.payload:
				default:
					// Slow consumer; drop it rather than block the hub.
					close(client.send)
					delete(h.clients[message.eventID], client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a payload for every watcher of the given event.
func (h *Hub) Broadcast(eventID uint, payload []byte) {
	h.broadcast <- broadcastMessage{eventID: eventID, payload: payload}
}

// Client is one WebSocket connection watching a single event.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	eventID uint
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// readPump discards inbound messages; the socket is broadcast-only. Its job
// is to notice the peer going away.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
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
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

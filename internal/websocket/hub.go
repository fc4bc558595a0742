package livews

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/steps"
)

const (
	MessageTypeSteps = "steps_today"
	MessageTypePong  = "pong"
	MessageTypeError = "error"
)

// Hub fans step updates out to every live connection of the user.
type Hub struct {
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
}

type conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client writes go through enqueue; only shutdown closes send.
type Client struct {
	hub    *Hub
	conn   conn
	userID int64
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

type Message struct {
	Type      string `json:"type"`
	UserID    int64  `json:"user_id,omitempty"`
	Day       string `json:"day,omitempty"`
	Steps     int    `json:"steps"`
	Reason    string `json:"reason,omitempty"`
	Content   string `json:"content,omitempty"`
	Timestamp string `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 64),
		done:       make(chan struct{}),
	}
}

func NewClient(hub *Hub, conn conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for userID, set := range h.clients {
				for client := range set {
					client.shutdown()
				}
				delete(h.clients, userID)
			}
			return
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				client.shutdown()
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.shutdown()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// NotifySteps never blocks the sensor path; updates are dropped when the
// broadcast queue is full.
func (h *Hub) NotifySteps(update steps.Update) {
	message := &Message{
		Type:      MessageTypeSteps,
		UserID:    update.UserID,
		Day:       update.Day,
		Steps:     update.Steps,
		Reason:    update.Reason,
		Timestamp: formatTimestamp(time.Now()),
	}
	select {
	case h.broadcast <- message:
	default:
		logrus.WithField("user_id", update.UserID).Warn("live hub: broadcast queue full, dropping update")
	}
}

func (h *Hub) deliver(message *Message) {
	encoded, err := json.Marshal(message)
	if err != nil {
		logrus.WithError(err).Error("live hub: encode message")
		return
	}

	set, ok := h.clients[message.UserID]
	if !ok {
		return
	}
	for client := range set {
		if !client.enqueue(encoded) {
			delete(set, client)
			client.shutdown()
		}
	}
	if len(set) == 0 {
		delete(h.clients, message.UserID)
	}
}

// Greet queues the current snapshot for a freshly connected client.
func (c *Client) Greet(snapshot steps.Update) {
	payload, err := json.Marshal(Message{
		Type:      MessageTypeSteps,
		UserID:    snapshot.UserID,
		Day:       snapshot.Day,
		Steps:     snapshot.Steps,
		Reason:    snapshot.Reason,
		Timestamp: formatTimestamp(time.Now()),
	})
	if err != nil {
		return
	}
	c.enqueue(payload)
}

// enqueue never blocks. It reports false when the queue is full or already
// shut down.
func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump only understands pings; the channel is push-only otherwise.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil {
			writeError(c, "invalid message payload")
			continue
		}
		if incoming.Type != "ping" {
			writeError(c, "unsupported message type")
			continue
		}
		writeMessage(c, Message{Type: MessageTypePong, Timestamp: formatTimestamp(time.Now())})
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

func writeError(client *Client, message string) {
	writeMessage(client, Message{
		Type:      MessageTypeError,
		Content:   message,
		Timestamp: formatTimestamp(time.Now()),
	})
}

func writeMessage(client *Client, message Message) {
	payload, err := json.Marshal(message)
	if err != nil {
		return
	}
	if !client.enqueue(payload) {
		client.hub.Unregister(client)
	}
}

func formatTimestamp(value time.Time) string {
	return value.UTC().Format(time.RFC3339)
}

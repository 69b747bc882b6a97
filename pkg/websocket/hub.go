package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub manages spectator connections and room-based broadcasts.
type Hub struct {
	register   chan registration
	unregister chan *Client
	broadcast  chan Broadcast
	done       chan struct{}
	stopOnce   sync.Once

	rooms map[string]map[*Client]bool
	log   *zap.Logger
}

// Hello produces the first message a client receives. It runs on the hub
// goroutine, so no broadcast can slip in between it and the registration.
type Hello func() (typ string, payload any, ok bool)

type registration struct {
	Client *Client
	Hello  Hello
}

type Broadcast struct {
	Room    string
	Type    string
	Payload any
}

// Envelope is the wire shape of every message sent to a client.
type Envelope struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		register:   make(chan registration),
		unregister: make(chan *Client),
		broadcast:  make(chan Broadcast, 256),
		done:       make(chan struct{}),
		rooms:      map[string]map[*Client]bool{},
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return
		case r := <-h.register:
			h.addClient(r.Client, r.Hello)
		case c := <-h.unregister:
			h.removeClient(c)
		case b := <-h.broadcast:
			h.broadcastToRoom(b.Room, b.Type, b.Payload)
		}
	}
}

// Stop ends Run and closes every client. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(c *Client, hello Hello) {
	select {
	case h.register <- registration{Client: c, Hello: hello}:
	case <-h.done:
		c.closeSend()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues a message for every client in room. It never blocks a
// caller once the hub is stopped.
func (h *Hub) Broadcast(room, typ string, payload any) {
	select {
	case h.broadcast <- Broadcast{Room: room, Type: typ, Payload: payload}:
	case <-h.done:
	}
}

func (h *Hub) addClient(c *Client, hello Hello) {
	if c == nil {
		return
	}
	if h.rooms[c.Room] == nil {
		h.rooms[c.Room] = map[*Client]bool{}
	}
	h.rooms[c.Room][c] = true

	if hello == nil {
		return
	}
	typ, payload, ok := hello()
	if !ok {
		return
	}
	data, err := encode(typ, payload)
	if err != nil {
		h.log.Error("ws hello marshal error", zap.String("room", c.Room), zap.String("type", typ), zap.Error(err))
		return
	}
	select {
	case c.Send <- data:
	default:
		h.removeClient(c)
	}
}

func (h *Hub) removeClient(c *Client) {
	if c == nil {
		return
	}
	if h.rooms[c.Room] != nil {
		delete(h.rooms[c.Room], c)
		if len(h.rooms[c.Room]) == 0 {
			delete(h.rooms, c.Room)
		}
	}
	c.closeSend()
}

func (h *Hub) closeAll() {
	for _, clients := range h.rooms {
		for c := range clients {
			c.closeSend()
		}
	}
	h.rooms = map[string]map[*Client]bool{}
}

func (h *Hub) broadcastToRoom(room, typ string, payload any) {
	clients := h.rooms[room]
	if len(clients) == 0 {
		return
	}

	data, err := encode(typ, payload)
	if err != nil {
		h.log.Error("ws broadcast marshal error", zap.String("room", room), zap.String("type", typ), zap.Error(err))
		return
	}

	for c := range clients {
		select {
		case c.Send <- data:
		default:
			// Backpressure / dead client.
			h.log.Warn("ws client dropped", zap.String("room", room))
			h.removeClient(c)
		}
	}
}

func encode(typ string, payload any) ([]byte, error) {
	return json.Marshal(Envelope{
		Type:      typ,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/marcosgperez/social-media/cmd/utils"
)

const (
	EventPost = "post"
	EventLike = "like"
)

// Event is one feed update pushed to connected clients.
type Event struct {
	Type string `json:"type"`
	Post any    `json:"post"`
}

type Client struct {
	conn *websocket.Conn
}

// Hub fans feed events out to every connected websocket client. A client
// whose write fails is dropped.
type Hub struct {
	clients   map[*Client]bool
	broadcast chan Event

	mu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]bool),
		broadcast: make(chan Event, 64),
	}
}

func (h *Hub) Run() {
	for event := range h.broadcast {
		h.mu.Lock()
		for client := range h.clients {
			if err := client.conn.WriteJSON(event); err != nil {
				log.Println("Write error:", err)
				client.conn.Close()
				delete(h.clients, client)
			}
		}
		h.mu.Unlock()
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
}

// Broadcast queues an event for delivery; a full queue drops the event
// rather than blocking the request path.
func (h *Hub) Broadcast(eventType string, post any) {
	select {
	case h.broadcast <- Event{Type: eventType, Post: post}:
	default:
		log.Println("Event queue full, dropping feed event")
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades an authenticated request to a websocket subscription.
// The bearer token arrives as a query parameter because browsers cannot set
// headers on websocket dials.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}
	if _, err := utils.ParseToken(token); err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &Client{conn: conn}
	hub.Register(client)
}

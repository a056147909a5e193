// chat.go - Broadcast chat relay over WebSocket.
//
// A single hub fans every inbound parcel out to all connected clients.
// The relay is independent of the media core; it shares only the auth
// layer, which resolves the sender before the upgrade.
package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Broadcast channel capacity; parcels beyond this while all
	// clients stall are dropped rather than blocking the relay.
	parcelBuffer = 256

	clientSendBuffer = 32
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = 54 * time.Second
	maxParcelBytes   = 4096
)

// Parcel is one relayed chat message.
type Parcel struct {
	SenderID uuid.UUID `json:"sender_id"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

type chatClient struct {
	hub    *ChatHub
	conn   *websocket.Conn
	send   chan Parcel
	userID uuid.UUID
}

// ChatHub owns the client set and the broadcast loop.
type ChatHub struct {
	broadcast  chan Parcel
	register   chan *chatClient
	unregister chan *chatClient

	mu      sync.Mutex
	clients map[*chatClient]struct{}
	done    chan struct{}
	once    sync.Once
}

// NewChatHub creates a hub; call Run in a goroutine to start relaying.
func NewChatHub() *ChatHub {
	return &ChatHub{
		broadcast:  make(chan Parcel, parcelBuffer),
		register:   make(chan *chatClient),
		unregister: make(chan *chatClient),
		clients:    make(map[*chatClient]struct{}),
		done:       make(chan struct{}),
	}
}

// Run relays parcels until Stop is called.
func (h *ChatHub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			GetMetrics().ChatClientConnected(1)
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				GetMetrics().ChatClientConnected(-1)
			}
			h.mu.Unlock()
		case parcel := <-h.broadcast:
			GetMetrics().RecordChatParcel()
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- parcel:
				default:
					// Slow consumer: drop it rather than stall the relay.
					delete(h.clients, c)
					close(c.send)
					GetMetrics().ChatClientConnected(-1)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop shuts the relay down and disconnects all clients.
func (h *ChatHub) Stop() {
	h.once.Do(func() { close(h.done) })
}

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatHandler handles GET /api/v1/chat?token=... by upgrading to a
// WebSocket after verifying the token from the query string (browsers
// cannot set the Authorization header on WebSocket dials).
func (cfg Config) chatHandler(hub *ChatHub) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := r.URL.Query().Get("token")
		if tok == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		payload, err := cfg.Auth.verifyToken(tok)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		userID, err := uuid.Parse(payload.Sub)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := chatUpgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the error response.
			log.Printf("chat: upgrade failed: %v", err)
			return
		}

		client := &chatClient{
			hub:    hub,
			conn:   conn,
			send:   make(chan Parcel, clientSendBuffer),
			userID: userID,
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()
	})
}

func (c *chatClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxParcelBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var inbound struct {
			Body string `json:"body"`
		}
		if err := c.conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("chat: read failed: %v", err)
			}
			return
		}
		if inbound.Body == "" {
			continue
		}
		c.hub.broadcast <- Parcel{
			SenderID: c.userID,
			Body:     inbound.Body,
			SentAt:   time.Now().UTC(),
		}
	}
}

func (c *chatClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case parcel, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(parcel); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

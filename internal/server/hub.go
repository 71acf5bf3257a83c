package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Hub fans state messages out to the connected websocket clients. Clients
// register and unregister through channels serviced by a single broadcaster
// goroutine; connections that fail a write are dropped.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
	logger     Logger
}

// NewHub starts a hub with its broadcaster goroutine running.
func NewHub(logger Logger) *Hub {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	h := &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
	}
	h.wg.Add(1)
	go h.run()
	return h
}

// Register adds a client connection to the hub.
func (h *Hub) Register(conn *websocket.Conn) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

// Unregister removes a client connection and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Broadcast queues a message for every connected client. When the queue is
// full the message is dropped; state messages are superseded by the next one
// anyway.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		h.logger.Debugf("hub: broadcast queue full, dropping message")
	}
}

// ClientCount reports the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return

		case conn := <-h.register:
			if conn == nil {
				continue
			}
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			if conn == nil {
				continue
			}
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			// Write outside the lock so a slow client cannot stall
			// registration.
			var dead []*websocket.Conn
			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Debugf("hub: dropping client after write error: %v", err)
					dead = append(dead, conn)
					conn.Close()
				}
			}
			if len(dead) > 0 {
				h.mu.Lock()
				for _, conn := range dead {
					delete(h.clients, conn)
				}
				h.mu.Unlock()
			}
		}
	}
}

// Close drops every client and stops the broadcaster goroutine.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
		h.wg.Wait()
	})
}

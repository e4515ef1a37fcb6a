package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Hub fans change signals out to connected event-stream clients. Events
// carry only a name; receivers are expected to re-query.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]chan string
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]chan string)}
}

func (h *Hub) Register(id string) chan string {
	ch := make(chan string, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = ch
	return ch
}

func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(ch)
	}
}

func (h *Hub) Broadcast(event string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.clients {
		select {
		case ch <- event:
		default:
			// Slow client; the signal coalesces into the next one.
		}
	}
}

// events streams named change notifications over a text/event-stream
// connection until the client goes away.
func (s *Server) events(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	id := uuid.NewString()
	ch := s.hub.Register(id)
	defer s.hub.Unregister(id)

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case name, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", name)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(c.Writer, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// Package ws pushes re-rendered page regions to the browser tabs of one session.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nurpe/waste-pickup/internal/view"
)

const (
	pingInterval = 20 * time.Second
	writeTimeout = 10 * time.Second
	readTimeout  = 60 * time.Second
)

type Msg struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type RegionUpdate struct {
	Region string `json:"region"`
	HTML   string `json:"html"`
}

type Hub struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewHub(log zerolog.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		log:      log,
		clients:  make(map[*websocket.Conn]bool),
	}
}

// Publish implements service.Publisher.
func (h *Hub) Publish(region view.Region, html string) int {
	return h.Broadcast(Msg{Type: "REGION_UPDATE", Data: RegionUpdate{Region: string(region), HTML: html}})
}

func (h *Hub) Broadcast(m Msg) int {
	b, err := json.Marshal(m)
	if err != nil {
		h.log.Error().Err(err).Str("type", m.Type).Msg("ws marshal")
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug().Err(err).Msg("ws write")
			_ = c.Close()
			delete(h.clients, c)
			continue
		}
		n++
	}
	return n
}

func (h *Hub) ClientsCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll disconnects every client of the hub.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.Close()
		delete(h.clients, c)
	}
}

// Serve upgrades the request and blocks until the client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("ws upgrade")
		return
	}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				h.mu.Lock()
				err := c.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeTimeout))
				h.mu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	c.SetReadLimit(1024)
	_ = c.SetReadDeadline(time.Now().Add(readTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			_ = c.Close()
			return
		}
	}
}

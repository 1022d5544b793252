// Package marketdata fans out executions to websocket subscribers, one
// JSON message per execution.
package marketdata

import (
	"net/http"
	"sync"

	"fenrir/internal/engine"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Tick is the wire shape published to every subscriber.
type Tick struct {
	Symbol   string   `json:"symbol"`
	Quantity int64    `json:"quantity"`
	Price    *float64 `json:"price"`
}

// Hub tracks connected subscribers and implements internal/net.Broadcaster.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*websocket.Conn]chan Tick
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[*websocket.Conn]chan Tick)}
}

// Publish is called by the server for every Execution produced by the
// market. It never blocks: for a subscriber whose outbound channel is
// full, the tick is dropped rather than stalling the matching path; the
// subscriber stays connected.
func (h *Hub) Publish(symbol string, execution *engine.Execution) {
	tick := Tick{Symbol: symbol, Quantity: execution.Quantity, Price: execution.Price}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.subscribers {
		select {
		case ch <- tick:
		default:
			log.Warn().Str("remote", conn.RemoteAddr().String()).Msg("market data subscriber too slow, dropping")
		}
	}
}

// ServeHTTP upgrades the request to a websocket connection and streams
// every subsequent Tick to it until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	ch := make(chan Tick, 16)
	h.addSubscriber(conn, ch)
	defer h.removeSubscriber(conn)

	for tick := range ch {
		if err := conn.WriteJSON(tick); err != nil {
			return
		}
	}
}

func (h *Hub) addSubscriber(conn *websocket.Conn, ch chan Tick) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[conn] = ch
}

func (h *Hub) removeSubscriber(conn *websocket.Conn) {
	h.mu.Lock()
	ch, ok := h.subscribers[conn]
	if ok {
		delete(h.subscribers, conn)
		close(ch)
	}
	h.mu.Unlock()
	_ = conn.Close()
}

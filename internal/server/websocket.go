package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/keyrun-app/keyrun/internal/types"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed between reads before the connection is considered dead.
	pongWait = 60 * time.Second

	// Ping period; must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from a peer. Clients only listen, so
	// anything beyond a close frame is oversized.
	maxMessageSize = 512
)

// client is one connected event-stream subscriber.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *ControlServer
}

func (s *ControlServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && !s.isAllowedOrigin(origin) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns(),
	})
	if err != nil {
		s.log.Warn(r.Context(), err, "websocket upgrade")
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	go c.writePump()
	go c.readPump()

	s.register <- c
}

// runHub owns the client set: registrations, disconnects, and fan-out of
// broadcast payloads. Slow clients are dropped rather than blocking the hub.
func (s *ControlServer) runHub(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case c := <-s.register:
			s.clientsMutex.Lock()
			s.clients[c.conn] = c
			count := len(s.clients)
			s.clientsMutex.Unlock()
			s.log.Debug(ctx, "event client connected", "total", count)

		case conn := <-s.unregister:
			s.clientsMutex.Lock()
			if c, ok := s.clients[conn]; ok {
				delete(s.clients, conn)
				close(c.send)
				conn.Close(websocket.StatusNormalClosure, "")
			}
			count := len(s.clients)
			s.clientsMutex.Unlock()
			s.log.Debug(ctx, "event client disconnected", "total", count)

		case message := <-s.broadcast:
			var stalled []*websocket.Conn
			s.clientsMutex.RLock()
			for conn, c := range s.clients {
				select {
				case c.send <- message:
				default:
					stalled = append(stalled, conn)
				}
			}
			s.clientsMutex.RUnlock()

			if len(stalled) > 0 {
				s.clientsMutex.Lock()
				for _, conn := range stalled {
					if c, ok := s.clients[conn]; ok {
						delete(s.clients, conn)
						close(c.send)
						conn.Close(websocket.StatusPolicyViolation, "client too slow")
					}
				}
				s.clientsMutex.Unlock()
			}
		}
	}
}

// forwardEvents turns session events into broadcast payloads until the
// subscription or the server context ends.
func (s *ControlServer) forwardEvents(ctx context.Context, events <-chan types.Event, cancel func()) {
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				s.log.Error(ctx, err, "encoding event", "type", event.Type)
				continue
			}
			select {
			case s.broadcast <- payload:
			case <-ctx.Done():
				return
			}
		}
	}
}

// readPump drains the connection so close frames and pings are processed;
// the stream is one-way, so any payload ends the connection.
func (c *client) readPump() {
	defer func() {
		c.server.unregister <- c.conn
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)

	ctx := context.Background()
	for {
		readCtx, cancel := context.WithTimeout(ctx, pongWait)
		_, _, err := c.conn.Read(readCtx)
		cancel()
		if err != nil {
			return
		}
	}
}

// writePump forwards queued payloads to the peer and keeps it alive with
// periodic pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := context.Background()
	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

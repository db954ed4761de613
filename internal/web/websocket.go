package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"dhcpconsole/internal/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebSocket upgrades the connection and streams hub events to it
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := events.NewClient()
	s.hub.Register(client)

	// Replies to console commands share the write pump with hub events
	replies := make(chan []byte, 16)
	done := make(chan struct{})

	go writePump(conn, client, replies, done)
	go s.readPump(conn, client, replies, done)
}

// writePump is the only writer on conn
func writePump(conn *websocket.Conn, client *events.Client, replies <-chan []byte, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case reply := <-replies:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}

func (s *Server) readPump(conn *websocket.Conn, client *events.Client, replies chan<- []byte, done chan<- struct{}) {
	defer func() {
		close(done)
		s.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		if reply := s.handleCommand(message); reply != nil {
			select {
			case replies <- reply:
			default:
				log.Printf("Dropping reply to console %s", client.ID)
			}
		}
	}
}

// handleCommand executes one console command and returns the reply to send,
// if any
func (s *Server) handleCommand(message []byte) []byte {
	var cmd events.Command
	if err := json.Unmarshal(message, &cmd); err != nil {
		return encodeReply(events.NewMessage(events.TypeError, events.ErrorPayload{
			Code:    "bad_request",
			Message: "Invalid command",
		}))
	}

	switch cmd.Type {
	case events.TypePing:
		return encodeReply(events.NewMessage(events.TypePong, nil))

	case events.TypeVisibility:
		var payload events.VisibilityPayload
		if err := json.Unmarshal(cmd.Payload, &payload); err != nil {
			return encodeReply(events.NewMessage(events.TypeError, events.ErrorPayload{
				Code:    "bad_request",
				Message: "Invalid visibility payload",
			}))
		}
		// A bulk refresh may follow; results arrive as resource.updated events
		go func(visible bool) {
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout()+writeWait)
			defer cancel()
			if err := s.ctrl.SetActive(ctx, visible); err != nil {
				log.Printf("Warning: refresh after visibility change failed: %v", err)
			}
		}(payload.Visible)
		return nil
	}

	return encodeReply(events.NewMessage(events.TypeError, events.ErrorPayload{
		Code:    "unknown_command",
		Message: "Unknown command " + string(cmd.Type),
	}))
}

func encodeReply(msg events.Message) []byte {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding reply: %v", err)
		return nil
	}
	return data
}

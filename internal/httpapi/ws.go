package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lily-ai/lily/internal/protocol"
)

// handleChatWS serves a websocket chat: one chat_message in, one chat_reply
// out, errors reported as error_event frames.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()
	defer s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.writeWS(conn, protocol.ErrorEvent{
				Type:   protocol.TypeErrorEvent,
				Code:   "invalid_client_message",
				Detail: err.Error(),
			})
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))

		msg, ok := parsed.(protocol.ChatMessage)
		if !ok {
			continue
		}
		userID := msg.UserID
		if strings.TrimSpace(userID) == "" {
			userID = "default_user"
		}

		resp, err := s.runTurn(r.Context(), userID, msg.Message)
		if err != nil {
			s.writeWS(conn, protocol.ErrorEvent{
				Type:   protocol.TypeErrorEvent,
				Code:   "memory_write_failed",
				Detail: err.Error(),
			})
			continue
		}

		s.writeWS(conn, protocol.ChatReply{
			Type:      protocol.TypeChatReply,
			UserID:    userID,
			Response:  resp.Response,
			Emotion:   resp.Emotion,
			Timestamp: resp.Timestamp,
		})
	}
}

func (s *Server) writeWS(conn *websocket.Conn, msg any) {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_ = conn.WriteJSON(msg)
}

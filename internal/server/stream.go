package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radiantlogicinc/TalkEngine/internal/metrics"
)

// handleStream upgrades the connection to a WebSocket and runs each text
// frame as a query against the session's engine. Every reply frame is
// the engine result encoded as JSON. The stream closes when the client
// disconnects or the session is removed.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.sessions.Get(id); !ok {
		s.writeError(w, http.StatusNotFound, "session not found: "+id)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		s.logger.Warn("websocket upgrade failed", zap.String("session_id", id), zap.Error(err))
		return
	}
	defer conn.Close()

	s.logger.Info("stream opened", zap.String("session_id", id))

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		// Re-check on every frame so a deleted session ends the stream
		sess, ok := s.sessions.Get(id)
		if !ok {
			deadline := time.Now().Add(time.Second)
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
				deadline)
			return
		}

		if !s.limiter.Allow() {
			metrics.RateLimited()
			if err := conn.WriteJSON(errorResponse{Error: "rate limit exceeded"}); err != nil {
				return
			}
			continue
		}

		query := string(message)
		res, err := sess.Run(r.Context(), query)
		if err != nil {
			s.logger.Error("running query", zap.String("session_id", id), zap.Error(err))
			if err := conn.WriteJSON(errorResponse{Error: err.Error()}); err != nil {
				return
			}
			continue
		}
		s.appendTranscript(id, query, res)

		if err := conn.WriteJSON(res); err != nil {
			return
		}
	}
}

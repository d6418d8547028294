package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"
	"github.com/zeu5/fights/types"
)

const socketReadTimeout = 5 * time.Minute

// handleSocket plays a session over a websocket. Every message is answered
// with exactly one response: the result of a step or reset, the session
// view for a state request, or an error.
func (s *Server) handleSocket(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		level.Warn(s.logger).Log("msg", "websocket upgrade failed", "session", session.ID, "err", err)
		return
	}
	defer conn.Close()
	ctx := c.Request.Context()
	logger := level.Debug(s.logger)
	logger.Log("msg", "websocket connected", "session", session.ID)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(socketReadTimeout))
		_, b, err := conn.ReadMessage()
		if err != nil {
			logger.Log("msg", "websocket closed", "session", session.ID, "err", err)
			return
		}

		var resp socketResponse
		msg := socketMessage{}
		if err := decode(socketMessageSchema, b, &msg); err != nil {
			resp = socketResponse{Type: "error", Error: err.Error()}
		} else {
			switch msg.Type {
			case "step":
				out := s.step(ctx, session, types.Participant{ID: msg.Participant}, msg.Action)
				r := newStepResponse(out)
				resp = socketResponse{Type: "result", Result: &r}
			case "reset":
				r := newResultResponse(session.Reset())
				s.publish(ctx, session)
				resp = socketResponse{Type: "result", Result: &r}
			case "state":
				view := session.View()
				resp = socketResponse{Type: "state", Session: &view}
			}
		}
		if err := writeJSON(conn, resp); err != nil {
			logger.Log("msg", "websocket write failed", "session", session.ID, "err", err)
			return
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	}
	return nil
}

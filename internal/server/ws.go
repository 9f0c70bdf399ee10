package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/internal/metrics"
	"github.com/goliatone/go-formdoc/pkg/document"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

const writeTimeout = 5 * time.Second

// hub tracks open sessions so configuration changes can be pushed to them.
type hub struct {
	logger *zap.Logger

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func newHub(logger *zap.Logger) *hub {
	return &hub{logger: logger, conns: make(map[string]*websocket.Conn)}
}

func (h *hub) add(id string, conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[id] = conn
	h.mu.Unlock()
	metrics.ActiveSessions.Inc()
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	_, ok := h.conns[id]
	delete(h.conns, id)
	h.mu.Unlock()
	if ok {
		metrics.ActiveSessions.Dec()
	}
}

func (h *hub) snapshot() map[string]*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]*websocket.Conn, len(h.conns))
	for id, conn := range h.conns {
		out[id] = conn
	}
	return out
}

func (h *hub) broadcastConfig(ctx context.Context, cfg model.Configuration) {
	msg := ServerMessage{Type: MessageConfig, Data: ConfigData{Configuration: cfg}}
	for id, conn := range h.snapshot() {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		if err := wsjson.Write(writeCtx, conn, msg); err != nil {
			h.logger.Debug("session broadcast failed", zap.String("session_id", id), zap.Error(err))
		}
		cancel()
	}
}

func (h *hub) closeAll() {
	for id, conn := range h.snapshot() {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		h.remove(id)
	}
}

// serveWS upgrades to a websocket and runs the session message loop.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	id := uuid.NewString()
	logger := s.logger.With(zap.String("session_id", id))
	s.sessions.add(id, conn)
	defer s.sessions.remove(id)

	ctx := r.Context()
	s.send(ctx, conn, ServerMessage{Type: MessageSession, Data: SessionData{SessionID: id}})
	logger.Debug("session opened")

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				logger.Debug("session closed", zap.Int("status", int(status)))
			} else if !errors.Is(err, context.Canceled) {
				logger.Debug("session read failed", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case MessageValues:
			s.handleValues(ctx, conn, msg)
		case MessageSubmit:
			s.handleSubmit(ctx, conn, msg)
		case MessagePing:
			s.send(ctx, conn, ServerMessage{Type: MessagePong, RequestID: msg.ID})
		default:
			s.sendError(ctx, conn, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (s *Server) decodeMessage(msg ClientMessage) (valuesRequest, model.Values, error) {
	var req valuesRequest
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return req, nil, err
		}
	}
	vals, err := req.snapshot()
	return req, vals, err
}

func (s *Server) handleValues(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	_, vals, err := s.decodeMessage(msg)
	if err != nil {
		s.sendError(ctx, conn, msg.ID, "invalid_data", err.Error())
		return
	}
	s.send(ctx, conn, ServerMessage{
		Type:      MessageState,
		RequestID: msg.ID,
		Data:      newStateResponse(s.manager.Current().Form, vals),
	})
}

func (s *Server) handleSubmit(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	req, vals, err := s.decodeMessage(msg)
	if err != nil {
		s.sendError(ctx, conn, msg.ID, "invalid_data", err.Error())
		return
	}
	cfg := s.manager.Current()
	templates, err := render.SelectTemplates(cfg, render.RenderOptions{Template: req.Template})
	if err != nil {
		s.sendError(ctx, conn, msg.ID, "template_not_found", err.Error())
		return
	}
	docs := document.Render(templates, cfg.Form, vals)
	metrics.DocumentsRendered.WithLabelValues("ws").Add(float64(len(docs)))
	s.send(ctx, conn, ServerMessage{
		Type:      MessageDocuments,
		RequestID: msg.ID,
		Data: DocumentsData{
			Documents:  docs,
			Validation: schema.Validate(cfg.Form, vals),
		},
	})
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(writeCtx, conn, msg); err != nil {
		s.logger.Debug("websocket write failed", zap.Error(err))
	}
}

func (s *Server) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	s.send(ctx, conn, ServerMessage{
		Type:      MessageError,
		RequestID: requestID,
		Data: ErrorData{
			Code:    code,
			Message: message,
		},
	})
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pairwave/signaling-service/internal/service"
)

// SignalWSHandler handles the live signaling channel.
// Path: /ws/signal/:user_id
type SignalWSHandler struct {
	hub     *service.SignalHub
	matcher *service.MatchService
	logger  *zap.Logger
}

// NewSignalWSHandler creates the WebSocket signaling handler.
func NewSignalWSHandler(hub *service.SignalHub, matcher *service.MatchService, logger *zap.Logger) *SignalWSHandler {
	return &SignalWSHandler{hub: hub, matcher: matcher, logger: logger}
}

// ServeWS upgrades the request to WebSocket and runs the signaling loop.
// A connection close removes the user from the waiting queue and from all
// room membership sets; it does not end any session record.
func (h *SignalWSHandler) ServeWS(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	conn, err := h.hub.Upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	peer, cleanup := h.hub.Register(userID, conn)
	defer func() {
		// A superseded connection must not dequeue the user: the reconnect
		// that replaced it is still live and still waiting.
		if cleanup() {
			h.matcher.Disconnect(userID)
		}
	}()

	go h.writePump(peer)
	h.readPump(peer)
}

func (h *SignalWSHandler) readPump(p *service.Peer) {
	for {
		_, data, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Debug("read error", zap.String("user_id", p.UserID), zap.Error(err))
			}
			return
		}
		h.dispatch(p, data)
	}
}

func (h *SignalWSHandler) writePump(p *service.Peer) {
	defer func() {
		_ = p.Conn.Close()
	}()
	for data := range p.Send {
		if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// dispatch routes one inbound frame. Forwarded frames keep the sender's FIFO
// order: this is the only goroutine reading the connection, and it pushes
// into per-recipient channels drained by a single writer each.
func (h *SignalWSHandler) dispatch(p *service.Peer, data []byte) {
	var f service.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		h.sendError(p, "bad_payload")
		return
	}
	if f.RoomID == "" {
		h.sendError(p, "roomId is required")
		return
	}

	switch f.Type {
	case service.FrameJoinRoom:
		h.hub.Join(f.RoomID, p)
	case service.FrameOffer:
		h.forward(p, f.RoomID, service.Frame{Type: service.FrameOffer, SDP: f.SDP})
	case service.FrameAnswer:
		h.forward(p, f.RoomID, service.Frame{Type: service.FrameAnswer, SDP: f.SDP})
	case service.FrameIceCandidate:
		h.forward(p, f.RoomID, service.Frame{
			Type:          service.FrameIceCandidate,
			Candidate:     f.Candidate,
			SDPMid:        f.SDPMid,
			SDPMLineIndex: f.SDPMLineIndex,
		})
	default:
		h.logger.Warn("unknown frame type", zap.String("type", f.Type), zap.String("user_id", p.UserID))
	}
}

func (h *SignalWSHandler) forward(p *service.Peer, roomID string, out service.Frame) {
	raw, err := json.Marshal(out)
	if err != nil {
		h.logger.Error("marshal frame", zap.Error(err))
		return
	}
	h.hub.Forward(roomID, p.UserID, raw)
}

func (h *SignalWSHandler) sendError(p *service.Peer, msg string) {
	raw, err := json.Marshal(service.Frame{Type: service.FrameError, Error: msg})
	if err != nil {
		return
	}
	p.TrySend(raw)
}

package service

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Frame is the live-channel envelope, both directions.
type Frame struct {
	Type          string  `json:"type"`
	RoomID        string  `json:"roomId,omitempty"`
	UserID        string  `json:"userId,omitempty"`
	SDP           string  `json:"sdp,omitempty"`
	Candidate     string  `json:"candidate,omitempty"`
	SDPMid        string  `json:"sdpMid,omitempty"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// Inbound frame types.
const (
	FrameJoinRoom     = "join-room"
	FrameOffer        = "offer"
	FrameAnswer       = "answer"
	FrameIceCandidate = "ice-candidate"
)

// Outbound frame types (offer/answer/ice-candidate are forwarded unchanged).
const (
	FramePeerJoined = "peer-joined"
	FramePeerLeft   = "peer-left"
	FrameError      = "error"
)

// Peer represents one live WebSocket connection.
type Peer struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	mu     sync.Mutex
	closed bool
}

// TrySend queues raw for the peer's writer without blocking. It reports false
// when the peer is closed or its buffer is full.
func (p *Peer) TrySend(raw []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.Send <- raw:
		return true
	default:
		return false
	}
}

func (p *Peer) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.Send)
	p.mu.Unlock()
	if p.Conn != nil {
		_ = p.Conn.Close()
	}
}

// SignalHub is the live-connection registry and room membership map. It
// forwards signaling frames between the members of a room with best-effort,
// at-most-once delivery and never persists payloads.
type SignalHub struct {
	mu    sync.RWMutex
	peers map[string]*Peer            // userID -> live connection (at most one)
	rooms map[string]map[string]*Peer // roomID -> userID -> peer

	upgrader   websocket.Upgrader
	maxMsgSize int64
	sendBuffer int
	log        *zap.Logger
}

// NewSignalHub creates a new signaling hub.
func NewSignalHub(maxMessageSize int64, sendBuffer int, log *zap.Logger) *SignalHub {
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	return &SignalHub{
		peers:      make(map[string]*Peer),
		rooms:      make(map[string]map[string]*Peer),
		maxMsgSize: maxMessageSize,
		sendBuffer: sendBuffer,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024 * 4,
			WriteBufferSize: 1024 * 4,
			// Allow all origins for dev; in prod set CheckOrigin.
		},
	}
}

// Upgrader returns the WebSocket upgrader for HTTP handlers.
func (h *SignalHub) Upgrader() *websocket.Upgrader {
	return &h.upgrader
}

// Register adds a live connection for userID and returns the peer plus a
// cleanup function. A newer connection for the same user supersedes the old
// one, which is closed. Cleanup reports whether the peer was still the
// registered connection: false means a reconnect already took over and the
// user is still live.
func (h *SignalHub) Register(userID string, conn *websocket.Conn) (*Peer, func() bool) {
	if conn != nil && h.maxMsgSize > 0 {
		conn.SetReadLimit(h.maxMsgSize)
	}
	p := &Peer{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, h.sendBuffer),
	}

	h.mu.Lock()
	old := h.peers[userID]
	h.peers[userID] = p
	if old != nil {
		h.detachLocked(old, false)
	}
	h.mu.Unlock()

	if old != nil {
		old.close()
		h.log.Info("connection superseded", zap.String("user_id", userID))
	}
	h.log.Info("peer registered", zap.String("user_id", userID))

	cleanup := func() bool {
		return h.unregister(p)
	}
	return p, cleanup
}

// Join adds the peer to roomID's membership set and notifies the members
// already present.
func (h *SignalHub) Join(roomID string, p *Peer) {
	h.mu.Lock()
	room := h.rooms[roomID]
	if room == nil {
		room = make(map[string]*Peer)
		h.rooms[roomID] = room
	}
	others := make([]*Peer, 0, len(room))
	for id, member := range room {
		if id != p.UserID {
			others = append(others, member)
		}
	}
	room[p.UserID] = p
	h.mu.Unlock()

	h.log.Info("peer joined room", zap.String("room_id", roomID), zap.String("user_id", p.UserID))

	if len(others) > 0 {
		raw, err := json.Marshal(Frame{Type: FramePeerJoined, UserID: p.UserID})
		if err != nil {
			return
		}
		for _, member := range others {
			h.trySend(member, raw)
		}
	}
}

// Forward delivers raw to every member of roomID except the sender.
// Delivery is best-effort: a full send buffer drops the frame.
func (h *SignalHub) Forward(roomID, fromUserID string, raw []byte) {
	h.mu.RLock()
	room, ok := h.rooms[roomID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	// Copy members so we don't hold the lock while sending.
	targets := make([]*Peer, 0, len(room))
	for id, member := range room {
		if id != fromUserID {
			targets = append(targets, member)
		}
	}
	h.mu.RUnlock()

	for _, member := range targets {
		h.trySend(member, raw)
	}
}

// unregister removes the peer from the registry and all rooms, notifying
// remaining room members, then closes the connection. It reports whether the
// registry entry still pointed at this connection; a superseding connection
// may already own it.
func (h *SignalHub) unregister(p *Peer) bool {
	h.mu.Lock()
	current := h.peers[p.UserID] == p
	if current {
		delete(h.peers, p.UserID)
	}
	notify := h.detachLocked(p, true)
	h.mu.Unlock()

	if len(notify) > 0 {
		raw, err := json.Marshal(Frame{Type: FramePeerLeft, UserID: p.UserID})
		if err == nil {
			for _, member := range notify {
				h.trySend(member, raw)
			}
		}
	}
	p.close()
	h.log.Info("peer unregistered", zap.String("user_id", p.UserID))
	return current
}

// detachLocked removes p from every room it is in. When collectPeers is set,
// the remaining members of those rooms are returned for peer-left
// notification. Callers must hold h.mu.
func (h *SignalHub) detachLocked(p *Peer, collectPeers bool) []*Peer {
	var notify []*Peer
	for roomID, room := range h.rooms {
		if member, ok := room[p.UserID]; !ok || member != p {
			continue
		}
		delete(room, p.UserID)
		if len(room) == 0 {
			delete(h.rooms, roomID)
			continue
		}
		if collectPeers {
			for _, member := range room {
				notify = append(notify, member)
			}
		}
	}
	return notify
}

func (h *SignalHub) trySend(p *Peer, raw []byte) {
	if !p.TrySend(raw) {
		h.log.Warn("dropping frame for peer", zap.String("user_id", p.UserID))
	}
}

// PeerCount returns the number of registered live connections.
func (h *SignalHub) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// RoomSize returns the number of members currently in a room.
func (h *SignalHub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

package service

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pairwave/signaling-service/internal/errs"
	"github.com/pairwave/signaling-service/internal/model"
)

// MatchResult is the outcome of a match request: either a pairing with a
// room, or a position in the waiting queue.
type MatchResult struct {
	Waiting bool
	RoomID  string
	Session *model.Session
}

// MatchService owns the waiting queue and the pairing policy. The queue is
// strict FIFO with set semantics: a user appears at most once, and the
// earliest still-waiting user is always matched first.
type MatchService struct {
	mu     sync.Mutex
	queue  []string
	queued map[string]struct{}

	store SessionServicer
	log   *zap.Logger
}

// NewMatchService creates a match service backed by the given session store.
func NewMatchService(store SessionServicer, log *zap.Logger) *MatchService {
	return &MatchService{
		queued: make(map[string]struct{}),
		store:  store,
		log:    log,
	}
}

// RequestMatch pairs userID with the earliest waiting peer, or enqueues them
// when no eligible peer is waiting. The check-then-mutate sequence runs under
// one lock so two concurrent requests can never dequeue the same peer or
// enqueue a duplicate.
func (m *MatchService) RequestMatch(userID string) (*MatchResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errs.ErrEmptyUserID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	peer, ok := m.dequeueLocked(userID)
	if !ok {
		if _, already := m.queued[userID]; !already {
			m.queue = append(m.queue, userID)
			m.queued[userID] = struct{}{}
		}
		m.log.Info("user waiting for peer", zap.String("user_id", userID), zap.Int("queue_len", len(m.queue)))
		return &MatchResult{Waiting: true}, nil
	}

	sess, err := m.store.Create(model.CreateSessionRequest{
		Participant1: peer,
		Participant2: userID,
		SessionType:  string(model.SessionTypeVideo),
	})
	if err != nil {
		// Put the peer back at the head so their position is not lost.
		m.queue = append([]string{peer}, m.queue...)
		m.queued[peer] = struct{}{}
		return nil, err
	}

	m.log.Info("users matched",
		zap.String("user_id", userID),
		zap.String("peer_id", peer),
		zap.String("room_id", sess.RoomID))
	return &MatchResult{RoomID: sess.RoomID, Session: sess}, nil
}

// NextChat abandons the user's current pairing and re-enqueues them. Every
// active session the user participates in is ended; the abandoned peer learns
// about it via the relay's disconnect propagation.
func (m *MatchService) NextChat(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errs.ErrEmptyUserID
	}
	if err := m.store.EndActiveFor(userID); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(userID)
	m.queue = append(m.queue, userID)
	m.queued[userID] = struct{}{}
	m.log.Info("user requeued", zap.String("user_id", userID))
	return nil
}

// Disconnect removes the user from the waiting queue. Active sessions are
// left untouched: they end only via NextChat or the session API.
func (m *MatchService) Disconnect(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(userID)
}

// QueueLen reports the current queue length.
func (m *MatchService) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// dequeueLocked removes and returns the earliest waiting user other than
// self. Callers must hold m.mu.
func (m *MatchService) dequeueLocked(self string) (string, bool) {
	for i, id := range m.queue {
		if id == self {
			continue
		}
		m.queue = append(m.queue[:i], m.queue[i+1:]...)
		delete(m.queued, id)
		return id, true
	}
	return "", false
}

// removeLocked drops the user from the queue if present. Callers must hold m.mu.
func (m *MatchService) removeLocked(userID string) {
	if _, ok := m.queued[userID]; !ok {
		return
	}
	for i, id := range m.queue {
		if id == userID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			break
		}
	}
	delete(m.queued, userID)
}

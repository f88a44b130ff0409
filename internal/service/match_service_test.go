package service

import (
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/pairwave/signaling-service/internal/errs"
	"github.com/pairwave/signaling-service/internal/model"
)

// stubStore is an in-memory SessionServicer for exercising the queue without
// a database.
type stubStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newStubStore() *stubStore {
	return &stubStore{sessions: make(map[string]*model.Session)}
}

func (s *stubStore) Create(input model.CreateSessionRequest) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.Status != model.SessionStatusActive || string(sess.SessionType) != input.SessionType {
			continue
		}
		if (sess.Participant1 == input.Participant1 && sess.Participant2 == input.Participant2) ||
			(sess.Participant1 == input.Participant2 && sess.Participant2 == input.Participant1) {
			return sess, nil
		}
	}
	sess := &model.Session{
		ID:           NewRoomID(),
		Participant1: input.Participant1,
		Participant2: input.Participant2,
		SessionType:  model.SessionType(input.SessionType),
		Status:       model.SessionStatusActive,
		RoomID:       NewRoomID(),
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *stubStore) Get(sessionID string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, errs.ErrSessionNotFound
	}
	return sess, nil
}

func (s *stubStore) End(sessionID string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, errs.ErrSessionNotFound
	}
	sess.Status = model.SessionStatusEnded
	sess.RoomID = ""
	return sess, nil
}

func (s *stubStore) EndActiveFor(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.Status == model.SessionStatusActive &&
			(sess.Participant1 == userID || sess.Participant2 == userID) {
			sess.Status = model.SessionStatusEnded
			sess.RoomID = ""
		}
	}
	return nil
}

func (s *stubStore) activeFor(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.Status == model.SessionStatusActive &&
			(sess.Participant1 == userID || sess.Participant2 == userID) {
			n++
		}
	}
	return n
}

func (s *stubStore) StoreOffer(roomID, sdp string) error { return nil }
func (s *stubStore) GetOffer(roomID string) (string, error) { return "", errs.ErrOfferNotFound }
func (s *stubStore) StoreAnswer(roomID, sdp string) error { return nil }
func (s *stubStore) GetAnswer(roomID string) (string, error) { return "", errs.ErrAnswerNotFound }
func (s *stubStore) AppendIceCandidate(roomID string, cand model.Candidate) error { return nil }
func (s *stubStore) GetIceCandidates(roomID string) ([]model.Candidate, error) {
	return nil, errs.ErrNoCandidates
}
func (s *stubStore) AppendMessage(sessionID, senderID, content string) (*model.Message, error) {
	return nil, errs.ErrSessionNotFound
}
func (s *stubStore) GetMessages(sessionID string) ([]model.Message, error) { return nil, nil }
func (s *stubStore) DeleteMessage(sessionID, messageID string) error { return nil }

func newTestMatchService() (*MatchService, *stubStore) {
	store := newStubStore()
	return NewMatchService(store, zap.NewNop()), store
}

func TestRequestMatch(t *testing.T) {
	t.Run("empty user id is rejected", func(t *testing.T) {
		m, _ := newTestMatchService()
		if _, err := m.RequestMatch(""); err != errs.ErrEmptyUserID {
			t.Errorf("expected ErrEmptyUserID, got %v", err)
		}
		if _, err := m.RequestMatch("   "); err != errs.ErrEmptyUserID {
			t.Errorf("expected ErrEmptyUserID for blank id, got %v", err)
		}
	})

	t.Run("first user waits", func(t *testing.T) {
		m, _ := newTestMatchService()
		res, err := m.RequestMatch("alice")
		if err != nil {
			t.Fatalf("RequestMatch: %v", err)
		}
		if !res.Waiting {
			t.Error("expected waiting result")
		}
		if m.QueueLen() != 1 {
			t.Errorf("expected queue length 1, got %d", m.QueueLen())
		}
	})

	t.Run("second user is matched with the first", func(t *testing.T) {
		m, _ := newTestMatchService()
		if _, err := m.RequestMatch("alice"); err != nil {
			t.Fatalf("RequestMatch alice: %v", err)
		}
		res, err := m.RequestMatch("bob")
		if err != nil {
			t.Fatalf("RequestMatch bob: %v", err)
		}
		if res.Waiting {
			t.Fatal("expected a match, got waiting")
		}
		if res.RoomID == "" {
			t.Error("expected a room id")
		}
		if res.Session.Participant1 != "alice" || res.Session.Participant2 != "bob" {
			t.Errorf("unexpected participants: %q, %q", res.Session.Participant1, res.Session.Participant2)
		}
		if m.QueueLen() != 0 {
			t.Errorf("expected empty queue, got %d", m.QueueLen())
		}
	})

	t.Run("repeat request is idempotent", func(t *testing.T) {
		m, _ := newTestMatchService()
		for i := 0; i < 3; i++ {
			res, err := m.RequestMatch("alice")
			if err != nil {
				t.Fatalf("RequestMatch: %v", err)
			}
			if !res.Waiting {
				t.Fatal("expected waiting result")
			}
		}
		if m.QueueLen() != 1 {
			t.Errorf("expected exactly one queue entry, got %d", m.QueueLen())
		}
	})

	t.Run("FIFO pairing order", func(t *testing.T) {
		m, _ := newTestMatchService()
		// Seed the queue via NextChat, which enqueues without pairing, so
		// a, b and c are all waiting at once. D must then be matched with a,
		// the earliest entry.
		for _, u := range []string{"a", "b", "c"} {
			if err := m.NextChat(u); err != nil {
				t.Fatalf("NextChat %s: %v", u, err)
			}
		}
		if m.QueueLen() != 3 {
			t.Fatalf("expected 3 waiting users, got %d", m.QueueLen())
		}
		res, err := m.RequestMatch("d")
		if err != nil {
			t.Fatalf("RequestMatch d: %v", err)
		}
		if res.Waiting {
			t.Fatal("expected d to be matched")
		}
		if res.Session.Participant1 != "a" {
			t.Errorf("d must be matched with a, got %q", res.Session.Participant1)
		}
		// Next arrival pairs with b.
		res, err = m.RequestMatch("e")
		if err != nil || res.Waiting {
			t.Fatalf("RequestMatch e: res=%+v err=%v", res, err)
		}
		if res.Session.Participant1 != "b" {
			t.Errorf("e must be matched with b, got %q", res.Session.Participant1)
		}
	})

	t.Run("a user never matches themselves", func(t *testing.T) {
		m, _ := newTestMatchService()
		if _, err := m.RequestMatch("alice"); err != nil {
			t.Fatalf("RequestMatch: %v", err)
		}
		res, err := m.RequestMatch("alice")
		if err != nil {
			t.Fatalf("RequestMatch: %v", err)
		}
		if !res.Waiting {
			t.Error("user must not be paired with their own queue entry")
		}
	})
}

func TestNextChat(t *testing.T) {
	t.Run("ends active sessions and requeues once", func(t *testing.T) {
		m, store := newTestMatchService()
		if _, err := m.RequestMatch("u"); err != nil {
			t.Fatalf("RequestMatch u: %v", err)
		}
		if _, err := m.RequestMatch("v"); err != nil {
			t.Fatalf("RequestMatch v: %v", err)
		}
		if err := m.NextChat("u"); err != nil {
			t.Fatalf("NextChat: %v", err)
		}
		if n := store.activeFor("u"); n != 0 {
			t.Errorf("expected no active sessions for u, got %d", n)
		}
		if m.QueueLen() != 1 {
			t.Errorf("expected u queued exactly once, got queue length %d", m.QueueLen())
		}
	})

	t.Run("already-queued user is not duplicated", func(t *testing.T) {
		m, _ := newTestMatchService()
		if _, err := m.RequestMatch("u"); err != nil {
			t.Fatalf("RequestMatch: %v", err)
		}
		if err := m.NextChat("u"); err != nil {
			t.Fatalf("NextChat: %v", err)
		}
		if m.QueueLen() != 1 {
			t.Errorf("expected queue length 1, got %d", m.QueueLen())
		}
	})

	t.Run("empty user id is rejected", func(t *testing.T) {
		m, _ := newTestMatchService()
		if err := m.NextChat(""); err != errs.ErrEmptyUserID {
			t.Errorf("expected ErrEmptyUserID, got %v", err)
		}
	})
}

func TestDisconnect(t *testing.T) {
	t.Run("removes queue entry only", func(t *testing.T) {
		m, store := newTestMatchService()
		if _, err := m.RequestMatch("u"); err != nil {
			t.Fatalf("RequestMatch u: %v", err)
		}
		if _, err := m.RequestMatch("v"); err != nil {
			t.Fatalf("RequestMatch v: %v", err)
		}
		// u and v are paired now; w waits.
		if _, err := m.RequestMatch("w"); err != nil {
			t.Fatalf("RequestMatch w: %v", err)
		}
		m.Disconnect("w")
		if m.QueueLen() != 0 {
			t.Errorf("expected empty queue, got %d", m.QueueLen())
		}

		m.Disconnect("u")
		if n := store.activeFor("u"); n != 1 {
			t.Errorf("disconnect must not touch active sessions, got %d active", n)
		}
	})

	t.Run("unknown user is a no-op", func(t *testing.T) {
		m, _ := newTestMatchService()
		m.Disconnect("ghost")
		if m.QueueLen() != 0 {
			t.Errorf("expected empty queue, got %d", m.QueueLen())
		}
	})
}

func TestConcurrentRequests(t *testing.T) {
	// Many users race into the queue at once. Afterwards every user is either
	// in exactly one session or waiting, nobody is paired twice, and the
	// queue holds no duplicates.
	m, store := newTestMatchService()

	const users = 50
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('A' + n%26)) + string(rune('a'+n/26))
			if _, err := m.RequestMatch(id); err != nil {
				t.Errorf("RequestMatch %s: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	m.mu.Lock()
	seen := make(map[string]int)
	for _, id := range m.queue {
		seen[id]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("user %s appears %d times in queue", id, n)
		}
	}
	queueLen := len(m.queue)
	m.mu.Unlock()

	store.mu.Lock()
	matched := make(map[string]int)
	for _, sess := range store.sessions {
		if sess.Status == model.SessionStatusActive {
			matched[sess.Participant1]++
			matched[sess.Participant2]++
		}
	}
	store.mu.Unlock()
	for id, n := range matched {
		if n != 1 {
			t.Errorf("user %s participates in %d active sessions", id, n)
		}
	}
	if queueLen+len(matched) != users {
		t.Errorf("accounting mismatch: %d queued + %d matched != %d users", queueLen, len(matched), users)
	}
}

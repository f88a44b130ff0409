package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pairwave/signaling-service/internal/errs"
	"github.com/pairwave/signaling-service/internal/model"
)

// SessionServicer is the session-store surface consumed by handlers and the
// match service.
type SessionServicer interface {
	Create(input model.CreateSessionRequest) (*model.Session, error)
	Get(sessionID string) (*model.Session, error)
	End(sessionID string) (*model.Session, error)
	EndActiveFor(userID string) error

	StoreOffer(roomID, sdp string) error
	GetOffer(roomID string) (string, error)
	StoreAnswer(roomID, sdp string) error
	GetAnswer(roomID string) (string, error)
	AppendIceCandidate(roomID string, cand model.Candidate) error
	GetIceCandidates(roomID string) ([]model.Candidate, error)

	AppendMessage(sessionID, senderID, content string) (*model.Message, error)
	GetMessages(sessionID string) ([]model.Message, error)
	DeleteMessage(sessionID, messageID string) error
}

// SessionService manages chat session records in PostgreSQL.
type SessionService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSessionService creates a session service.
func NewSessionService(db *gorm.DB, log *zap.Logger) *SessionService {
	return &SessionService{db: db, log: log}
}

// Create creates a new session for the pair. If an active session already
// exists for the same unordered pair and type, that session is returned
// instead of creating a duplicate.
func (s *SessionService) Create(input model.CreateSessionRequest) (*model.Session, error) {
	if input.SessionType == "" {
		return nil, errs.ErrEmptySessionType
	}

	var existing model.ChatSession
	err := s.db.
		Where("status = ? AND session_type = ?", string(model.SessionStatusActive), input.SessionType).
		Where("(participant1 = ? AND participant2 = ?) OR (participant1 = ? AND participant2 = ?)",
			input.Participant1, input.Participant2, input.Participant2, input.Participant1).
		First(&existing).Error
	if err == nil {
		return entityToSession(&existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ent := &model.ChatSession{
		ID:           uuid.New().String(),
		Participant1: input.Participant1,
		Participant2: input.Participant2,
		SessionType:  input.SessionType,
		Status:       string(model.SessionStatusActive),
		StartedAt:    time.Now(),
	}
	// Only video pairings get a signaling room.
	if input.SessionType == string(model.SessionTypeVideo) {
		roomID := NewRoomID()
		ent.RoomID = &roomID
	}
	if err := s.db.Create(ent).Error; err != nil {
		return nil, err
	}
	s.log.Info("session created",
		zap.String("session_id", ent.ID),
		zap.String("participant1", ent.Participant1),
		zap.String("participant2", ent.Participant2))
	return entityToSession(ent), nil
}

// Get returns a session by ID.
func (s *SessionService) Get(sessionID string) (*model.Session, error) {
	ent, err := s.findByID(sessionID)
	if err != nil {
		return nil, err
	}
	return entityToSession(ent), nil
}

// End marks the session as ended, clears its room binding and wipes stored
// ICE candidates. Ending an already-ended session is a no-op.
func (s *SessionService) End(sessionID string) (*model.Session, error) {
	ent, err := s.findByID(sessionID)
	if err != nil {
		return nil, err
	}
	if ent.Status == string(model.SessionStatusEnded) {
		return entityToSession(ent), nil
	}
	now := time.Now()
	if err := s.db.Model(ent).Updates(map[string]interface{}{
		"status":   string(model.SessionStatusEnded),
		"ended_at": now,
		"room_id":  nil,
	}).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("session_id = ?", ent.ID).Delete(&model.IceCandidate{}).Error; err != nil {
		return nil, err
	}
	ent.Status = string(model.SessionStatusEnded)
	ent.EndedAt = &now
	ent.RoomID = nil
	s.log.Info("session ended", zap.String("session_id", ent.ID))
	return entityToSession(ent), nil
}

// EndActiveFor ends every active session that userID participates in.
// Used by next-chat: the other participant finds out through the relay's
// disconnect propagation, not through the store.
func (s *SessionService) EndActiveFor(userID string) error {
	var ids []string
	err := s.db.Model(&model.ChatSession{}).
		Where("status = ? AND (participant1 = ? OR participant2 = ?)",
			string(model.SessionStatusActive), userID, userID).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	if err := s.db.Model(&model.ChatSession{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":   string(model.SessionStatusEnded),
			"ended_at": now,
			"room_id":  nil,
		}).Error; err != nil {
		return err
	}
	if err := s.db.Where("session_id IN ?", ids).Delete(&model.IceCandidate{}).Error; err != nil {
		return err
	}
	s.log.Info("sessions ended for user", zap.String("user_id", userID), zap.Int("count", len(ids)))
	return nil
}

// StoreOffer upserts the offer for a room: creates a bare session keyed by
// roomID if none exists, otherwise overwrites the previous offer.
func (s *SessionService) StoreOffer(roomID, sdp string) error {
	ent, err := s.findByRoom(roomID)
	if errors.Is(err, errs.ErrSessionNotFound) {
		bare := &model.ChatSession{
			ID:          uuid.New().String(),
			SessionType: string(model.SessionTypeVideo),
			Status:      string(model.SessionStatusActive),
			RoomID:      &roomID,
			StartedAt:   time.Now(),
			Offer:       sdp,
		}
		return s.db.Create(bare).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(ent).Update("offer", sdp).Error
}

// GetOffer returns the stored offer for a room.
func (s *SessionService) GetOffer(roomID string) (string, error) {
	ent, err := s.findByRoom(roomID)
	if err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			return "", errs.ErrOfferNotFound
		}
		return "", err
	}
	if ent.Offer == "" {
		return "", errs.ErrOfferNotFound
	}
	return ent.Offer, nil
}

// StoreAnswer overwrites the answer for a room. Unlike StoreOffer it requires
// an existing session: an answer only makes sense once a room exists.
func (s *SessionService) StoreAnswer(roomID, sdp string) error {
	ent, err := s.findByRoom(roomID)
	if err != nil {
		return err
	}
	return s.db.Model(ent).Update("answer", sdp).Error
}

// GetAnswer returns the stored answer for a room.
func (s *SessionService) GetAnswer(roomID string) (string, error) {
	ent, err := s.findByRoom(roomID)
	if err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			return "", errs.ErrAnswerNotFound
		}
		return "", err
	}
	if ent.Answer == "" {
		return "", errs.ErrAnswerNotFound
	}
	return ent.Answer, nil
}

// AppendIceCandidate appends a candidate to the room's ordered sequence.
func (s *SessionService) AppendIceCandidate(roomID string, cand model.Candidate) error {
	ent, err := s.findByRoom(roomID)
	if err != nil {
		return err
	}
	row := &model.IceCandidate{
		SessionID:     ent.ID,
		Candidate:     cand.Candidate,
		SDPMid:        cand.SDPMid,
		SDPMLineIndex: cand.SDPMLineIndex,
	}
	return s.db.Create(row).Error
}

// GetIceCandidates returns the room's candidates in insertion order.
func (s *SessionService) GetIceCandidates(roomID string) ([]model.Candidate, error) {
	ent, err := s.findByRoom(roomID)
	if err != nil {
		return nil, err
	}
	var rows []model.IceCandidate
	if err := s.db.Where("session_id = ?", ent.ID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.ErrNoCandidates
	}
	out := make([]model.Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Candidate{
			Candidate:     r.Candidate,
			SDPMid:        r.SDPMid,
			SDPMLineIndex: r.SDPMLineIndex,
		})
	}
	return out, nil
}

// AppendMessage appends a chat message with a server-assigned timestamp.
func (s *SessionService) AppendMessage(sessionID, senderID, content string) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errs.ErrEmptyContent
	}
	if _, err := s.findByID(sessionID); err != nil {
		return nil, err
	}
	row := &model.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now(),
	}
	if err := s.db.Create(row).Error; err != nil {
		return nil, err
	}
	return messageToDTO(row), nil
}

// GetMessages returns the session's messages in send order.
func (s *SessionService) GetMessages(sessionID string) ([]model.Message, error) {
	if _, err := s.findByID(sessionID); err != nil {
		return nil, err
	}
	var rows []model.ChatMessage
	if err := s.db.Where("session_id = ?", sessionID).Order("timestamp asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, *messageToDTO(&r))
	}
	return out, nil
}

// DeleteMessage removes a single message by ID.
func (s *SessionService) DeleteMessage(sessionID, messageID string) error {
	if _, err := s.findByID(sessionID); err != nil {
		return err
	}
	res := s.db.Where("session_id = ? AND id = ?", sessionID, messageID).Delete(&model.ChatMessage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrMessageNotFound
	}
	return nil
}

func (s *SessionService) findByID(sessionID string) (*model.ChatSession, error) {
	var ent model.ChatSession
	if err := s.db.Where("id = ?", sessionID).First(&ent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrSessionNotFound
		}
		return nil, err
	}
	return &ent, nil
}

func (s *SessionService) findByRoom(roomID string) (*model.ChatSession, error) {
	var ent model.ChatSession
	if err := s.db.Where("room_id = ?", roomID).First(&ent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrSessionNotFound
		}
		return nil, err
	}
	return &ent, nil
}

func entityToSession(ent *model.ChatSession) *model.Session {
	sess := &model.Session{
		ID:           ent.ID,
		Participant1: ent.Participant1,
		Participant2: ent.Participant2,
		SessionType:  model.SessionType(ent.SessionType),
		Status:       model.SessionStatus(ent.Status),
		StartedAt:    ent.StartedAt,
		EndedAt:      ent.EndedAt,
		Offer:        ent.Offer,
		Answer:       ent.Answer,
	}
	if ent.RoomID != nil {
		sess.RoomID = *ent.RoomID
	}
	return sess
}

func messageToDTO(row *model.ChatMessage) *model.Message {
	return &model.Message{
		ID:        row.ID,
		SenderID:  row.SenderID,
		Content:   row.Content,
		Timestamp: row.Timestamp,
	}
}

// NewRoomID generates a fresh unique room identifier.
func NewRoomID() string {
	return "room_" + uuid.New().String()
}

package model

import "time"

// SessionStatus represents chat session state.
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusEnded  SessionStatus = "ended"
)

// SessionType distinguishes video pairings from text-only ones.
type SessionType string

const (
	SessionTypeVideo SessionType = "video"
	SessionTypeText  SessionType = "text"
)

// Session is the API view of a chat session (not GORM entity).
type Session struct {
	ID           string        `json:"id"`
	Participant1 string        `json:"participant1"`
	Participant2 string        `json:"participant2"`
	SessionType  SessionType   `json:"session_type"`
	Status       SessionStatus `json:"status"`
	RoomID       string        `json:"room_id,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      *time.Time    `json:"ended_at,omitempty"`
	Offer        string        `json:"offer,omitempty"`
	Answer       string        `json:"answer,omitempty"`
}

// Candidate is the API view of a stored ICE candidate.
type Candidate struct {
	Candidate     string `json:"candidate"`
	SDPMid        string `json:"sdpMid"`
	SDPMLineIndex uint16 `json:"sdpMLineIndex"`
}

// Message is the API view of a chat message.
type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MatchRequest is the request body for POST /match, /match/next, /match/disconnect.
type MatchRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// MatchResponse is the response for POST /match when a peer was found.
type MatchResponse struct {
	RoomID  string   `json:"room_id"`
	Session *Session `json:"session"`
	WSURL   string   `json:"ws_url,omitempty"`
}

// CreateSessionRequest is the request body for POST /sessions.
type CreateSessionRequest struct {
	Participant1 string `json:"participant1"`
	Participant2 string `json:"participant2"`
	SessionType  string `json:"session_type" binding:"required"`
}

// StoreOfferRequest is the request body for POST /webrtc/offer.
type StoreOfferRequest struct {
	RoomID string `json:"room_id" binding:"required"`
	SDP    string `json:"sdp" binding:"required"`
}

// StoreAnswerRequest is the request body for POST /webrtc/answer.
type StoreAnswerRequest struct {
	RoomID string `json:"room_id" binding:"required"`
	SDP    string `json:"sdp" binding:"required"`
}

// StoreCandidateRequest is the request body for POST /webrtc/ice-candidate.
type StoreCandidateRequest struct {
	RoomID        string  `json:"room_id" binding:"required"`
	Candidate     string  `json:"candidate" binding:"required"`
	SDPMid        *string `json:"sdpMid" binding:"required"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex" binding:"required"`
}

// SendMessageRequest is the request body for POST /sessions/:id/messages.
type SendMessageRequest struct {
	SenderID string `json:"sender_id" binding:"required"`
	Content  string `json:"content"`
}

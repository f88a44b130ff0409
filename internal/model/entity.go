package model

import "time"

// ChatSession is the durable record of a pairing (GORM entity).
// room_id carries a unique index; it is set while the pairing is active and
// cleared when the session ends, so at most one active session owns a room.
type ChatSession struct {
	ID           string     `gorm:"type:uuid;primaryKey"`
	Participant1 string     `gorm:"size:64;not null;default:'';index"`
	Participant2 string     `gorm:"size:64;not null;default:'';index"`
	SessionType  string     `gorm:"size:10;not null;default:video"`  // video, text
	Status       string     `gorm:"size:10;not null;default:active"` // active, ended
	RoomID       *string    `gorm:"size:64;uniqueIndex"`
	StartedAt    time.Time  `gorm:"not null"`
	EndedAt      *time.Time `gorm:"column:ended_at"`
	Offer        string     `gorm:"type:text;not null;default:''"`
	Answer       string     `gorm:"type:text;not null;default:''"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`

	Candidates []IceCandidate `gorm:"foreignKey:SessionID"`
	Messages   []ChatMessage  `gorm:"foreignKey:SessionID"`
}

func (ChatSession) TableName() string { return "chat_sessions" }

// IceCandidate is one stored ICE candidate (GORM entity).
// The serial primary key preserves insertion order.
type IceCandidate struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	SessionID     string    `gorm:"type:uuid;not null;index"`
	Candidate     string    `gorm:"type:text;not null"`
	SDPMid        string    `gorm:"column:sdp_mid;size:64;not null;default:''"`
	SDPMLineIndex uint16    `gorm:"column:sdp_mline_index;not null;default:0"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (IceCandidate) TableName() string { return "ice_candidates" }

// ChatMessage is one chat message inside a session (GORM entity).
type ChatMessage struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	SessionID string    `gorm:"type:uuid;not null;index"`
	SenderID  string    `gorm:"size:64;not null"`
	Content   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"not null"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

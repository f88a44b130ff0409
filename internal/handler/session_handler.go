package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairwave/signaling-service/internal/errs"
	"github.com/pairwave/signaling-service/internal/model"
	"github.com/pairwave/signaling-service/internal/service"
)

// SessionHandler handles REST API for session records and their chat log.
type SessionHandler struct {
	svc service.SessionServicer
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(svc service.SessionServicer) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// CreateSession godoc
// POST /sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_type is required"})
		return
	}
	sess, err := h.svc.Create(req)
	if err != nil {
		if errors.Is(err, errs.ErrEmptySessionType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// GetSession godoc
// GET /sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, err := h.svc.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get session"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// EndSession godoc
// DELETE /sessions/:id
func (h *SessionHandler) EndSession(c *gin.Context) {
	sess, err := h.svc.End(c.Param("id"))
	if err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end session"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// SendMessage godoc
// POST /sessions/:id/messages
func (h *SessionHandler) SendMessage(c *gin.Context) {
	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sender_id is required"})
		return
	}
	msg, err := h.svc.AppendMessage(c.Param("id"), req.SenderID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrEmptyContent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, errs.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		}
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GetMessages godoc
// GET /sessions/:id/messages
func (h *SessionHandler) GetMessages(c *gin.Context) {
	msgs, err := h.svc.GetMessages(c.Param("id"))
	if err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// DeleteMessage godoc
// DELETE /sessions/:id/messages/:message_id
func (h *SessionHandler) DeleteMessage(c *gin.Context) {
	err := h.svc.DeleteMessage(c.Param("id"), c.Param("message_id"))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, errs.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

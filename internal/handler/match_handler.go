package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairwave/signaling-service/internal/errs"
	"github.com/pairwave/signaling-service/internal/model"
	"github.com/pairwave/signaling-service/internal/service"
)

// MatchHandler handles the matchmaking REST API.
type MatchHandler struct {
	svc *service.MatchService
	ws  *service.WSConfig
}

// NewMatchHandler creates a match handler.
func NewMatchHandler(svc *service.MatchService, wsBaseURL string) *MatchHandler {
	return &MatchHandler{
		svc: svc,
		ws:  &service.WSConfig{BaseURL: wsBaseURL},
	}
}

// RequestMatch godoc
// POST /match
func (h *MatchHandler) RequestMatch(c *gin.Context) {
	var req model.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	res, err := h.svc.RequestMatch(req.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrEmptyUserID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request match"})
		return
	}
	if res.Waiting {
		c.JSON(http.StatusOK, gin.H{"waiting": true})
		return
	}
	c.JSON(http.StatusOK, model.MatchResponse{
		RoomID:  res.RoomID,
		Session: res.Session,
		WSURL:   h.ws.WSURL(req.UserID),
	})
}

// NextChat godoc
// POST /match/next
func (h *MatchHandler) NextChat(c *gin.Context) {
	var req model.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	if err := h.svc.NextChat(req.UserID); err != nil {
		if errors.Is(err, errs.ErrEmptyUserID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to requeue"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"searching": true})
}

// DisconnectUser godoc
// POST /match/disconnect
func (h *MatchHandler) DisconnectUser(c *gin.Context) {
	var req model.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	h.svc.Disconnect(req.UserID)
	c.Status(http.StatusNoContent)
}

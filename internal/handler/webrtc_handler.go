package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairwave/signaling-service/internal/errs"
	"github.com/pairwave/signaling-service/internal/model"
	"github.com/pairwave/signaling-service/internal/service"
)

// WebRTCHandler handles the HTTP fallback for signaling payloads, backed by
// the session store. Peers unable to hold a live channel poll these routes.
type WebRTCHandler struct {
	svc service.SessionServicer
}

// NewWebRTCHandler creates a WebRTC fallback handler.
func NewWebRTCHandler(svc service.SessionServicer) *WebRTCHandler {
	return &WebRTCHandler{svc: svc}
}

// StoreOffer godoc
// POST /webrtc/offer
func (h *WebRTCHandler) StoreOffer(c *gin.Context) {
	var req model.StoreOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room_id and sdp are required"})
		return
	}
	if err := h.svc.StoreOffer(req.RoomID, req.SDP); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store offer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sdp": req.SDP})
}

// GetOffer godoc
// GET /webrtc/offer/:room_id
func (h *WebRTCHandler) GetOffer(c *gin.Context) {
	sdp, err := h.svc.GetOffer(c.Param("room_id"))
	if err != nil {
		if errors.Is(err, errs.ErrOfferNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get offer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sdp": sdp})
}

// StoreAnswer godoc
// POST /webrtc/answer
func (h *WebRTCHandler) StoreAnswer(c *gin.Context) {
	var req model.StoreAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room_id and sdp are required"})
		return
	}
	if err := h.svc.StoreAnswer(req.RoomID, req.SDP); err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store answer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sdp": req.SDP})
}

// GetAnswer godoc
// GET /webrtc/answer/:room_id
func (h *WebRTCHandler) GetAnswer(c *gin.Context) {
	sdp, err := h.svc.GetAnswer(c.Param("room_id"))
	if err != nil {
		if errors.Is(err, errs.ErrAnswerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get answer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sdp": sdp})
}

// StoreIceCandidate godoc
// POST /webrtc/ice-candidate
func (h *WebRTCHandler) StoreIceCandidate(c *gin.Context) {
	var req model.StoreCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room_id, candidate, sdpMid and sdpMLineIndex are required"})
		return
	}
	cand := model.Candidate{
		Candidate:     req.Candidate,
		SDPMid:        *req.SDPMid,
		SDPMLineIndex: *req.SDPMLineIndex,
	}
	if err := h.svc.AppendIceCandidate(req.RoomID, cand); err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store candidate"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidate": req.Candidate})
}

// GetIceCandidates godoc
// GET /webrtc/ice-candidates/:room_id
func (h *WebRTCHandler) GetIceCandidates(c *gin.Context) {
	cands, err := h.svc.GetIceCandidates(c.Param("room_id"))
	if err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) || errors.Is(err, errs.ErrNoCandidates) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get candidates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": cands})
}

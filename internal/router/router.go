package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairwave/signaling-service/internal/handler"
	"github.com/pairwave/signaling-service/pkg/constants"
)

// New builds the HTTP router.
func New(
	matchHandler *handler.MatchHandler,
	webrtcHandler *handler.WebRTCHandler,
	sessionHandler *handler.SessionHandler,
	signalWS *handler.SignalWSHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)

	// Matchmaking
	match := r.Group("/match")
	{
		match.POST("", matchHandler.RequestMatch)
		match.POST("/next", matchHandler.NextChat)
		match.POST("/disconnect", matchHandler.DisconnectUser)
	}

	// HTTP signaling fallback (for peers without a live channel)
	webrtc := r.Group("/webrtc")
	{
		webrtc.POST("/offer", webrtcHandler.StoreOffer)
		webrtc.GET("/offer/:room_id", webrtcHandler.GetOffer)
		webrtc.POST("/answer", webrtcHandler.StoreAnswer)
		webrtc.GET("/answer/:room_id", webrtcHandler.GetAnswer)
		webrtc.POST("/ice-candidate", webrtcHandler.StoreIceCandidate)
		webrtc.GET("/ice-candidates/:room_id", webrtcHandler.GetIceCandidates)
	}

	// Session records + chat log
	sessions := r.Group("/sessions")
	{
		sessions.POST("", sessionHandler.CreateSession)
		sessions.GET("/:id", sessionHandler.GetSession)
		sessions.DELETE("/:id", sessionHandler.EndSession)
		sessions.POST("/:id/messages", sessionHandler.SendMessage)
		sessions.GET("/:id/messages", sessionHandler.GetMessages)
		sessions.DELETE("/:id/messages/:message_id", sessionHandler.DeleteMessage)
	}

	// WebSocket: /ws/signal/:user_id
	r.GET("/ws/signal/:user_id", signalWS.ServeWS)

	return r
}

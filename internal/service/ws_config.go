package service

import "fmt"

// WSConfig holds the WebSocket URL base for responses.
type WSConfig struct {
	BaseURL string
}

// WSURL returns the live-channel URL for a user (e.g. wss://host/ws/signal/userID).
func (c *WSConfig) WSURL(userID string) string {
	if c == nil || c.BaseURL == "" {
		return fmt.Sprintf("/ws/signal/%s", userID)
	}
	base := c.BaseURL
	if base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return fmt.Sprintf("%s/ws/signal/%s", base, userID)
}

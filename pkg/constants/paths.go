package constants

// Health and readiness paths shared across services.
const (
	PathHealth = "/health"
	PathReady  = "/ready"
)

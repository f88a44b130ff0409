package errs

import "errors"

// Domain sentinel errors, mapped to HTTP status codes in handlers.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrOfferNotFound   = errors.New("no offer found for this room")
	ErrAnswerNotFound  = errors.New("no answer found for this room")
	ErrNoCandidates    = errors.New("no candidates found for this room")
	ErrMessageNotFound = errors.New("message not found")

	ErrEmptyUserID      = errors.New("user id is required")
	ErrEmptySessionType = errors.New("session type is required")
	ErrEmptyContent     = errors.New("message content cannot be empty")
)

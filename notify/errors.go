package notify

import "errors"

var (
	// ErrAccessTokenRequired is returned when no Graph access token is provided.
	ErrAccessTokenRequired = errors.New("access token is required")

	// ErrRecipientsRequired is returned when the message has no recipients.
	ErrRecipientsRequired = errors.New("at least one recipient is required")
)

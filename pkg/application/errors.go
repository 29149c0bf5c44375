package application

import "errors"

var (
	// ErrBusy is returned when another enhancement holds the document.
	ErrBusy = errors.New("document is being enhanced by another request")

	// ErrNotEnhanceable is returned for document kinds that can only be
	// validated.
	ErrNotEnhanceable = errors.New("document kind cannot be enhanced")

	ErrUnknownKind = errors.New("cannot determine document kind")
)

package document

import "errors"

var (
	ErrUnknownLanguage = errors.New("unknown language")
	ErrUnknownKind     = errors.New("unknown document kind")
)

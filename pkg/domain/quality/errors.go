package quality

import "errors"

var (
	ErrUnknownCriterion = errors.New("unknown criterion")
	ErrInvalidWeight    = errors.New("invalid weight")
)

package improvement

import "errors"

var ErrUnknownCategory = errors.New("unknown improvement category")

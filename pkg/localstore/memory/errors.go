package memory

import "errors"

var errUnavailable = errors.New("local storage unavailable")

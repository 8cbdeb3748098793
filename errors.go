package frost

import "errors"

// ErrNoDevice is returned by New when no render device is given.
var ErrNoDevice = errors.New("frost: no render device")

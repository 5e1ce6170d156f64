package service

import "errors"

// ErrNotStarted is returned when an operation needs a running service.
var ErrNotStarted = errors.New("service not started")

package core

import (
	"errors"
)

var (
	ErrConfigInvalid = errors.New("invalid configuration")
	ErrWatcherClosed = errors.New("config watcher already closed")
)

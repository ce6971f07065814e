package reactive

import (
	"errors"
	"fmt"
)

var (
	ErrInfiniteUpdateLoop = errors.New("infinite update loop")
	ErrRootData           = errors.New("cannot add or delete reactive properties on component root data")
	ErrFrozen             = errors.New("target is frozen")
	ErrInvalidPath        = errors.New("invalid watch expression path")
)

// InfiniteUpdateError is reported when a watcher keeps queueing itself
// during the flush that is running it.
type InfiniteUpdateError struct {
	WatcherID  uint64
	Expression string
	User       bool
}

func (e *InfiniteUpdateError) Error() string {
	if e.User {
		return fmt.Sprintf("You may have an infinite update loop in watcher with expression %q", e.Expression)
	}
	return "You may have an infinite update loop in a component render function."
}

func (e *InfiniteUpdateError) Is(target error) bool {
	return target == ErrInfiniteUpdateLoop
}

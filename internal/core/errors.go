package core

import (
	"errors"
	"fmt"
)

// ErrInterrupted is returned from a suspension point (sleep, wait, blocked
// acquire) when the actor is interrupted. Behaviors treat it as a request
// to stop and proceed to termination.
var ErrInterrupted = errors.New("interrupted")

// NotOwnerError reports a lock-discipline violation: release, wait, or
// notify invoked by an actor that does not own the resource. It is fatal to
// the calling behavior but never corrupts arena state.
type NotOwnerError struct {
	Actor    string
	Resource string
	Op       string
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("%s: %s %s: caller is not the owner", e.Actor, e.Op, e.Resource)
}

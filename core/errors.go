package core

import (
	"errors"
	"fmt"
)

// ErrBlockedUpstream is raised at an Await when no producer remains: the
// upstream flow has closed, returned, or never existed. It is the
// distinguished end-of-stream signal (spec §6) — stage logic may catch it
// with errors.Is to perform graceful end-of-input behavior; left unhandled
// it propagates downstream as ordinary channel closure.
var ErrBlockedUpstream = errors.New("flowlet: blocked upstream")

// ErrFlowletExit signals cooperative shutdown of a flow: returning it from
// a FlowFunc (typically via `return f.Close()`) or having it delivered into
// a pending Await/Send is never surfaced to a caller of runner.Run — the
// runtime consumes it while unwinding.
var ErrFlowletExit = errors.New("flowlet: flow exiting")

// CannotCoerceError reports that a composition operand was neither a Stage
// nor a recognized coercible source kind.
type CannotCoerceError struct {
	Value any
}

func (e *CannotCoerceError) Error() string {
	return fmt.Sprintf("flowlet: cannot coerce type %T into a Stage", e.Value)
}

// ErrCannotCoerce is the sentinel matched by errors.Is(err, core.ErrCannotCoerce);
// CannotCoerceError implements Is so wrapped instances compare equal to it.
var ErrCannotCoerce = errors.New("flowlet: cannot coerce value into a Stage")

// Is makes CannotCoerceError match the ErrCannotCoerce sentinel via errors.Is.
func (e *CannotCoerceError) Is(target error) bool {
	return target == ErrCannotCoerce
}

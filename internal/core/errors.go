package core

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for an empty or whitespace-only follow-up
	// question.  No completion request is made.
	ErrInvalidInput = errors.New("follow-up question is empty")

	// ErrNoPlan is returned when a follow-up is asked before a plan exists.
	ErrNoPlan = errors.New("no visit plan has been generated yet")

	// ErrPlanChanged is returned when the plan was regenerated while a
	// follow-up about the previous plan was being answered.  The answer is
	// dropped.
	ErrPlanChanged = errors.New("visit plan changed while the question was being answered")

	// ErrEmptyCompletion is wrapped in a CompletionError when the model
	// returns only whitespace.
	ErrEmptyCompletion = errors.New("completion was empty")
)

// CompletionError reports a failed call to the completion service.  Session
// state is never modified when one is returned.
type CompletionError struct {
	Op  string
	Err error
}

func (e *CompletionError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("%s: completion service timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: completion service failed: %v", e.Op, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// Timeout reports whether the call was cut off by the completion deadline.
func (e *CompletionError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

package pipes

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned by terminals that need at least one value, such as
	// First, Last, Find and Reduce, when the Pipe produced none.
	ErrEmpty = errors.New("pipes: no values")

	// ErrAssertion is the reason of the PipelineError returned when an
	// AssertEach predicate does not hold.
	ErrAssertion = errors.New("pipes: assertion failed")
)

// PipelineError reports the item a pipeline callback failed on, along with
// the error it returned.
type PipelineError struct {
	Item   any
	Reason error
}

func (e PipelineError) Error() string {
	return fmt.Sprintf("pipeline error on item %v: %v", e.Item, e.Reason)
}

func (e PipelineError) Unwrap() error {
	return e.Reason
}

package aggregate

import (
	"fmt"

	"github.com/farhan-ahmed1/settle/internal/task"
)

// Outcome is the result of waiting on a batch of tasks. It is either a
// success carrying every value in input order, or a failure carrying a
// single cause. It is never both.
type Outcome[T any] struct {
	values []T
	err    error
}

// Success builds a successful outcome. A nil slice becomes an empty one.
func Success[T any](values []T) Outcome[T] {
	if values == nil {
		values = []T{}
	}
	return Outcome[T]{values: values}
}

// Failure builds a failed outcome
func Failure[T any](err error) Outcome[T] {
	if err == nil {
		err = task.ErrRejected
	}
	return Outcome[T]{err: err}
}

// Ok reports whether every task succeeded
func (o Outcome[T]) Ok() bool {
	return o.err == nil
}

// Values returns the ordered values, or nil for a failed outcome
func (o Outcome[T]) Values() []T {
	if o.err != nil {
		return nil
	}
	return o.values
}

// Err returns the surfaced failure cause, or nil on success
func (o Outcome[T]) Err() error {
	return o.err
}

// Unwrap returns the outcome in Go's usual (values, error) form
func (o Outcome[T]) Unwrap() ([]T, error) {
	return o.Values(), o.err
}

func (o Outcome[T]) String() string {
	if o.err != nil {
		return fmt.Sprintf("failure(%v)", o.err)
	}
	return fmt.Sprintf("success(%v)", o.values)
}

package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State represents the current state of a task
type State string

const (
	StatePending   State = "pending"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

var (
	// ErrRejected is the cause recorded when a task is rejected with a nil error
	ErrRejected = errors.New("task rejected")
)

// PanicError is the failure recorded when a task function panics
type PanicError struct {
	TaskID string
	Value  interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %s panicked: %v", e.TaskID, e.Value)
}

// Func is the unit of work run by a task
type Func[T any] func(ctx context.Context) (T, error)

// Task is a handle to an in-flight computation that eventually completes
// with a value of type T or fails with an error. It settles exactly once.
type Task[T any] struct {
	ID string

	once sync.Once
	done chan struct{}

	// written once before done is closed
	value     T
	err       error
	state     State
	startedAt time.Time
	settledAt time.Time
}

func newTask[T any]() *Task[T] {
	return &Task[T]{
		ID:        uuid.New().String(),
		done:      make(chan struct{}),
		state:     StatePending,
		startedAt: time.Now(),
	}
}

// Go starts fn on its own goroutine and returns its handle immediately
func Go[T any](ctx context.Context, fn Func[T]) *Task[T] {
	t := newTask[T]()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				t.settle(zero, &PanicError{TaskID: t.ID, Value: r})
			}
		}()

		value, err := fn(ctx)
		t.settle(value, err)
	}()

	return t
}

// New returns a pending task together with the functions that settle it.
// Only the first call to either function has any effect.
func New[T any]() (t *Task[T], resolve func(T), reject func(error)) {
	t = newTask[T]()
	resolve = func(value T) { t.settle(value, nil) }
	reject = func(err error) {
		if err == nil {
			err = ErrRejected
		}
		var zero T
		t.settle(zero, err)
	}
	return t, resolve, reject
}

// Resolved returns a task that has already completed with value
func Resolved[T any](value T) *Task[T] {
	t, resolve, _ := New[T]()
	resolve(value)
	return t
}

// Rejected returns a task that has already failed with err
func Rejected[T any](err error) *Task[T] {
	t, _, reject := New[T]()
	reject(err)
	return t
}

func (t *Task[T]) settle(value T, err error) {
	t.once.Do(func() {
		t.value = value
		t.err = err
		t.settledAt = time.Now()
		if err != nil {
			t.state = StateFailed
		} else {
			t.state = StateCompleted
		}
		close(t.done)
	})
}

// Done returns a channel that is closed once the task has settled
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task settles and returns its value and error
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.value, t.err
}

// State returns the task state without blocking
func (t *Task[T]) State() State {
	select {
	case <-t.done:
		return t.state
	default:
		return StatePending
	}
}

// Duration returns how long the task took to settle, or zero while pending
func (t *Task[T]) Duration() time.Duration {
	select {
	case <-t.done:
		return t.settledAt.Sub(t.startedAt)
	default:
		return 0
	}
}

// Settlement blocks until the task settles and describes the outcome,
// recording index as the task's position in its batch
func (t *Task[T]) Settlement(index int) Settlement[T] {
	value, err := t.Wait()

	s := Settlement[T]{
		Index:    index,
		TaskID:   t.ID,
		State:    t.state,
		Value:    value,
		Err:      err,
		Duration: t.settledAt.Sub(t.startedAt),
	}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

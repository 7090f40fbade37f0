// Package aggregate waits on batches of tasks and reduces them to a single
// ordered outcome.
//
// All waits for every task to settle before deciding. When several tasks
// fail, the failure reported is the one at the lowest input position, no
// matter which task failed first in wall-clock time. Tasks are never
// cancelled; a failure does not stop the others from running.
package aggregate

import (
	"errors"
	"time"

	"github.com/farhan-ahmed1/settle/internal/logger"
	"github.com/farhan-ahmed1/settle/internal/task"
)

var (
	// ErrNilTask is the failure recorded for a nil entry in a batch
	ErrNilTask = errors.New("nil task in batch")
)

// Report summarizes one aggregation for observers
type Report struct {
	Tasks         int
	Failed        int
	FailedIndex   int // lowest failed position, -1 when all succeeded
	Waited        time.Duration
	TaskDurations []time.Duration
}

// Ok reports whether every task in the batch succeeded
func (r Report) Ok() bool {
	return r.Failed == 0
}

// Observer receives a Report after every aggregation
type Observer interface {
	ObserveAggregate(r Report)
}

// Aggregator attaches logging and observers to All and AllSettled.
// A nil *Aggregator is valid and observes nothing.
type Aggregator struct {
	log       *logger.Logger
	observers []Observer
}

// New creates an aggregator. log may be nil.
func New(log *logger.Logger, observers ...Observer) *Aggregator {
	if log == nil {
		log = logger.Discard()
	}
	return &Aggregator{
		log:       log.WithComponent("aggregate"),
		observers: observers,
	}
}

// All waits for every task and returns their values in input order, or
// the cause of the first failed task by input position.
func All[T any](tasks ...*task.Task[T]) Outcome[T] {
	return Run[T](nil, tasks...)
}

// AllSettled waits for every task and returns one settlement per task in
// input order.
func AllSettled[T any](tasks ...*task.Task[T]) []task.Settlement[T] {
	return Settle[T](nil, tasks...)
}

// Run is All reported through a.
func Run[T any](a *Aggregator, tasks ...*task.Task[T]) Outcome[T] {
	settlements := Settle(a, tasks...)

	values := make([]T, len(settlements))
	for i, s := range settlements {
		if !s.Success() {
			return Failure[T](s.Err)
		}
		values[i] = s.Value
	}
	return Success(values)
}

// Settle is AllSettled reported through a.
func Settle[T any](a *Aggregator, tasks ...*task.Task[T]) []task.Settlement[T] {
	start := time.Now()

	settlements := make([]task.Settlement[T], len(tasks))
	for i, t := range tasks {
		if t == nil {
			settlements[i] = task.Settlement[T]{
				Index: i,
				State: task.StateFailed,
				Err:   ErrNilTask,
				Error: ErrNilTask.Error(),
			}
			continue
		}
		// Input-order waits; later tasks keep running meanwhile.
		settlements[i] = t.Settlement(i)
	}

	if a != nil {
		a.report(summarize(settlements, time.Since(start)))
	}
	return settlements
}

func summarize[T any](settlements []task.Settlement[T], waited time.Duration) Report {
	r := Report{
		Tasks:         len(settlements),
		FailedIndex:   -1,
		Waited:        waited,
		TaskDurations: make([]time.Duration, len(settlements)),
	}
	for i, s := range settlements {
		r.TaskDurations[i] = s.Duration
		if s.Success() {
			continue
		}
		r.Failed++
		if r.FailedIndex < 0 {
			r.FailedIndex = i
		}
	}
	return r
}

func (a *Aggregator) report(r Report) {
	fields := logger.Fields{
		"tasks":  r.Tasks,
		"failed": r.Failed,
		"waited": r.Waited,
	}
	if r.Ok() {
		a.log.Debug("Batch settled", fields)
	} else {
		fields["failed_index"] = r.FailedIndex
		a.log.Debug("Batch settled with failures", fields)
	}

	for _, o := range a.observers {
		o.ObserveAggregate(r)
	}
}

package task

import (
	"time"
)

// Settlement records how a single task in a batch settled
type Settlement[T any] struct {
	Index    int           `json:"index"`
	TaskID   string        `json:"task_id"`
	State    State         `json:"state"`
	Value    T             `json:"value,omitempty"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Success reports whether the task completed without error
func (s Settlement[T]) Success() bool {
	return s.State == StateCompleted
}

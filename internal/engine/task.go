package engine

import (
	"context"
	"sync"
)

// State is the engine lifecycle state.
type State int

const (
	Untrained State = iota
	Training
	Ready
)

func (s State) String() string {
	switch s {
	case Untrained:
		return "untrained"
	case Training:
		return "training"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Task is the single-shot handle for one Initialize call.
type Task struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

// Done is closed once the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the task result. It is nil while the task is running.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

func (t *Task) finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *Task) finish(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
}

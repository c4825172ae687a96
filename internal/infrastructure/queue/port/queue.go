package port

import (
	"context"
)

// Task is a background job: a stable type string plus opaque payload bytes.
// Encoding is the producer's concern; handlers decode what they enqueued.
type Task struct {
	Type    string
	Payload []byte
}

// Handler processes one task. Returning a non-nil error asks the backend to
// retry under its policy, so handlers must be idempotent.
type Handler func(ctx context.Context, task Task) error

// EnqueueOption tunes a single enqueue. Zero values mean backend defaults.
type EnqueueOption struct {
	Queue    string // logical queue name
	MaxRetry int    // retry budget before the task is dropped
}

// Client hands tasks to the queue backend.
type Client interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// Server consumes tasks and dispatches them to registered handlers.
// Run blocks until the context is canceled.
type Server interface {
	Register(taskType string, h Handler)
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
}

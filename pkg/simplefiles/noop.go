package simplefiles

import "context"

// NoopJobQueue is a no-operation implementation of JobQueue
// Useful when no variant worker is deployed or for testing
type NoopJobQueue struct{}

// NewNoopJobQueue creates a new no-operation job queue
func NewNoopJobQueue() JobQueue {
	return &NoopJobQueue{}
}

// Enqueue drops the job and returns nil
func (n *NoopJobQueue) Enqueue(ctx context.Context, job VariantJob) error {
	return nil
}

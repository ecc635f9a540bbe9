package memory

import (
	"context"
	"sync"

	"github.com/tendant/simple-files/pkg/simplefiles"
)

var _ simplefiles.JobQueue = (*Queue)(nil)

// Queue is an in-process job queue that holds enqueued jobs until drained.
type Queue struct {
	mu   sync.Mutex
	jobs []simplefiles.VariantJob
	// Err, when set, is returned by Enqueue and the job is dropped.
	Err error
}

// New creates an empty in-memory queue.
func New() *Queue {
	return &Queue{}
}

func (q *Queue) Enqueue(ctx context.Context, job simplefiles.VariantJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.Err != nil {
		return q.Err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

// Jobs returns a snapshot of the enqueued jobs in order.
func (q *Queue) Jobs() []simplefiles.VariantJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]simplefiles.VariantJob, len(q.jobs))
	copy(out, q.jobs)
	return out
}

// Drain returns the pending jobs in order and empties the queue.
func (q *Queue) Drain() []simplefiles.VariantJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.jobs
	q.jobs = nil
	return out
}

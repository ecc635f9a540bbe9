// Package redis publishes variant-generation jobs onto a Redis list that
// an external worker consumes.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/tendant/simple-files/pkg/simplefiles"
)

// DefaultQueueName is the list jobs are pushed to when none is configured.
const DefaultQueueName = "filesQueue"

var _ simplefiles.JobQueue = (*Queue)(nil)

// Queue pushes JSON-encoded jobs onto the tail of a Redis list.
type Queue struct {
	client goredis.Cmdable
	name   string
}

// New creates a queue on the given list. An empty name uses DefaultQueueName.
func New(client goredis.Cmdable, name string) *Queue {
	if name == "" {
		name = DefaultQueueName
	}
	return &Queue{client: client, name: name}
}

func (q *Queue) Enqueue(ctx context.Context, job simplefiles.VariantJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.client.RPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("failed to push job to %s: %w", q.name, err)
	}
	return nil
}

// Name returns the list jobs are pushed to.
func (q *Queue) Name() string {
	return q.name
}

package jobs

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/bizadmin/alog"
)

// Test returns a Queue for unit tests. Jobs are only processed when calling RunAll,
// so the enqueued Jobs can be asserted first.
func Test(t *testing.T) *TestQueue {
	t.Helper()

	return &TestQueue{
		MemoryQueue: NewMemoryQueue(alog.NewNoop()),
		t:           t,
	}
}

// TestQueue exposes assertions on the Jobs in the queue.
// The assertions follow stretchr/testify and return whether they succeeded.
type TestQueue struct {
	*MemoryQueue
	t *testing.T
}

// RunAll processes Jobs until none with a registered JobFunc is left.
// A failing Job is retried once per call, after all others.
func (q *TestQueue) RunAll(ctx context.Context) {
	q.t.Helper()

	q.mu.Lock()
	pending := len(q.jobs)
	q.mu.Unlock()

	for range pending {
		if !q.processNext(ctx) {
			return
		}
	}
}

// Jobs returns all Jobs not yet processed, in the order they were enqueued.
func (q *TestQueue) Jobs() []any {
	q.mu.Lock()
	defer q.mu.Unlock()

	return append([]any{}, q.jobs...)
}

func (q *TestQueue) Empty(msgAndArgs ...any) bool {
	q.t.Helper()

	return assert.Empty(q.t, q.Jobs(), msgAndArgs...)
}

func (q *TestQueue) NotEmpty(msgAndArgs ...any) bool {
	q.t.Helper()

	return assert.NotEmpty(q.t, q.Jobs(), msgAndArgs...)
}

// Total asserts the number of Jobs in the queue.
func (q *TestQueue) Total(total int, msgAndArgs ...any) bool {
	q.t.Helper()

	return assert.Len(q.t, q.Jobs(), total, msgAndArgs...)
}

// Queued asserts the number of Jobs with the same type as job.
func (q *TestQueue) Queued(job Job, total int, msgAndArgs ...any) bool {
	q.t.Helper()

	jobType := jobTypeOf(reflect.TypeOf(job))
	count := 0

	for _, j := range q.Jobs() {
		if jobTypeOf(reflect.TypeOf(j)) == jobType {
			count++
		}
	}

	return assert.Equal(q.t, total, count, msgAndArgs...)
}

// Contains asserts that a Job equal to job is in the queue.
func (q *TestQueue) Contains(job Job, msgAndArgs ...any) bool {
	q.t.Helper()

	return assert.Contains(q.t, q.Jobs(), job, msgAndArgs...)
}

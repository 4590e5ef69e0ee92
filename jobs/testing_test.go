package jobs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/bizadmin/jobs"
)

func TestTestQueue(t *testing.T) {
	t.Parallel()

	t.Run("assert enqueued jobs", func(t *testing.T) {
		t.Parallel()

		q := jobs.Test(t)
		q.Empty()

		require.NoError(t, q.Enqueue(ctx, []any{simpleJob{}, jobWithArgs{Name: "a"}, jobWithArgs{Name: "b"}}))

		q.NotEmpty()
		q.Total(3)
		q.Queued(jobWithArgs{}, 2)
		q.Queued(jobWithJobType{}, 0)
		q.Contains(jobWithArgs{Name: "b"})
	})

	t.Run("run all", func(t *testing.T) {
		t.Parallel()

		var names []string

		q := jobs.Test(t)
		err := q.RegisterJobFunc(func(_ context.Context, job jobWithArgs) error {
			names = append(names, job.Name)

			return nil
		})
		require.NoError(t, err)

		require.NoError(t, q.Enqueue(ctx, []jobWithArgs{{Name: "a"}, {Name: "b"}}))
		require.NoError(t, q.Enqueue(ctx, simpleJob{}))

		q.RunAll(ctx)

		assert.Equal(t, []string{"a", "b"}, names)
		q.Total(1, "job without JobFunc stays")
		q.Queued(simpleJob{}, 1)
	})

	t.Run("failed job stays", func(t *testing.T) {
		t.Parallel()

		q := jobs.Test(t)
		err := q.RegisterJobFunc(func(_ context.Context, _ jobWithJobType) error {
			return errFailed
		})
		require.NoError(t, err)

		require.NoError(t, q.Enqueue(ctx, jobWithJobType{Payload: 1}))
		q.RunAll(ctx)

		q.Contains(jobWithJobType{Payload: 1})
	})
}

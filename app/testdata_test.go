package app_test

import (
	"context"

	"github.com/go-arrower/bizadmin/app"
)

var ctx = context.Background()

type (
	request  struct{}
	response struct{}
)

// kinds lists every kind of use case in the order it is tested.
var kinds = []string{"request", "command", "query", "job"} //nolint:gochecknoglobals // read only

// decorators applies one decorator to each kind of use case.
type decorators[In any] struct {
	request func(app.Request[In, response]) app.Request[In, response]
	command func(app.Command[In]) app.Command[In]
	query   func(app.Query[In, response]) app.Query[In, response]
	job     func(app.Job[In]) app.Job[In]
}

// useCases wraps useCase into each kind of use case, decorated by d.
// The returned funcs call the decorated handler of the kind they are keyed by.
func useCases[In any](d decorators[In], useCase func(ctx context.Context, in In) error) map[string]func(context.Context, In) error {
	withResponse := func(ctx context.Context, in In) (response, error) {
		return response{}, useCase(ctx, in)
	}

	req := d.request(app.TestRequestHandler(withResponse))
	cmd := d.command(app.TestCommandHandler(useCase))
	query := d.query(app.TestQueryHandler(withResponse))
	job := d.job(app.TestJobHandler(useCase))

	return map[string]func(context.Context, In) error{
		"request": func(ctx context.Context, in In) error {
			_, err := req.H(ctx, in)
			return err
		},
		"command": cmd.H,
		"query": func(ctx context.Context, in In) error {
			_, err := query.H(ctx, in)
			return err
		},
		"job": job.H,
	}
}

func succeed[In any](_ context.Context, _ In) error { return nil }

func fail[In any](_ context.Context, _ In) error { return app.ErrUseCaseFailed }

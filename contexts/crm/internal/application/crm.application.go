package application

import (
	"context"

	"github.com/go-arrower/bizadmin/app"
)

// TypeApplication holds the use cases of one kind of reference data.
type TypeApplication struct {
	Kind string

	List       func(ctx context.Context) (TypesResponse, error)
	Create     app.Request[CreateTypeRequest, TypeResult]
	Activate   app.Command[ActivateTypeCommand]
	Deactivate app.Command[DeactivateTypeCommand]
}

// ListWith adapts the query of a kind, e.g. GetEmailTypesQuery, to TypeApplication.List.
func ListWith[Q any](query app.Query[Q, TypesResponse]) func(ctx context.Context) (TypesResponse, error) {
	return func(ctx context.Context) (TypesResponse, error) {
		return query.H(ctx, *new(Q))
	}
}

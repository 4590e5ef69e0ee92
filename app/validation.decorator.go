package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	ctx2 "github.com/go-arrower/bizadmin/ctx"
)

const CtxValidated ctx2.CTXKey = "bizadmin.validated"

// PassedValidation reports if ctx went through one of the validating decorators.
func PassedValidation(ctx context.Context) bool {
	v, _ := ctx.Value(CtxValidated).(bool)

	return v
}

// NewValidatedRequest checks the validate tags of each Req before calling req.
// An invalid Req fails with a DomainError of kind ErrValidation and never reaches req.
// If validate is nil, a default validator is used.
func NewValidatedRequest[Req any, Res any](validate *validator.Validate, req Request[Req, Res]) Request[Req, Res] {
	return newValidatingDecorator(validate, req)
}

func NewValidatedCommand[C any](validate *validator.Validate, cmd Command[C]) Command[C] {
	return lower[C](newValidatingDecorator(validate, lift(cmd)))
}

func NewValidatedQuery[Q any, Res any](validate *validator.Validate, query Query[Q, Res]) Query[Q, Res] {
	return newValidatingDecorator[Q, Res](validate, query)
}

func NewValidatedJob[J any](validate *validator.Validate, job Job[J]) Job[J] {
	return lower[J](newValidatingDecorator(validate, lift[J](job)))
}

func newValidatingDecorator[In any, Out any](validate *validator.Validate, base Request[In, Out]) *validatingDecorator[In, Out] {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}

	return &validatingDecorator[In, Out]{validate: validate, base: base}
}

type validatingDecorator[In any, Out any] struct {
	validate *validator.Validate
	base     Request[In, Out]
}

func (d *validatingDecorator[In, Out]) H(ctx context.Context, in In) (Out, error) { //nolint:ireturn // valid use of generics
	if err := validateStruct(d.validate, in); err != nil {
		return *new(Out), err
	}

	return d.base.H(context.WithValue(ctx, CtxValidated, true), in) //nolint:wrapcheck // decorate but not change anything
}

// validateStruct returns a DomainError with the code <Struct>.Invalid and a message
// listing every field that failed. The validator.ValidationErrors stay accessible with errors.As.
func validateStruct(validate *validator.Validate, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	code := typeName(v) + ".Invalid"

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError(code, err.Error()).Wrap(err)
	}

	msgs := make([]string, 0, len(fieldErrs))

	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}

		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), rule))
	}

	return NewValidationError(code, strings.Join(msgs, "; ")).Wrap(err)
}

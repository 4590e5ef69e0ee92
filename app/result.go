package app

import (
	"encoding/json"
	"fmt"
)

// Result is the outcome of a use case as it leaves the application.
// It is either a success carrying a value and an optional note,
// or a failure carrying a DomainError and the zero value.
//
// Results are immutable, create them with Success, SuccessWithNote, Failure, or ResultOf.
type Result[T any] struct {
	value     T
	err       *DomainError
	note      string
	isSuccess bool
}

func Success[T any](value T) Result[T] {
	return Result[T]{value: value, isSuccess: true}
}

// SuccessWithNote is a success that informs the caller about something,
// e.g. that nothing had to be done, as a session was already closed.
func SuccessWithNote[T any](value T, note string) Result[T] {
	return Result[T]{value: value, note: note, isSuccess: true}
}

// Failure returns a failed Result. A nil err is reported as an unknown failure,
// so that a failure always carries an error.
func Failure[T any](err *DomainError) Result[T] {
	if err == nil {
		err = NewDomainError(nil, "Result.Unknown", "the request failed for an unknown reason")
	}

	return Result[T]{err: err}
}

// ResultOf converts the return values of a handler into a Result.
func ResultOf[T any](value T, err error) Result[T] {
	if err != nil {
		return Failure[T](AsDomainError(err))
	}

	return Success(value)
}

func (r Result[T]) IsSuccess() bool {
	return r.isSuccess
}

// Error is nil for a successful Result.
func (r Result[T]) Error() *DomainError {
	return r.err
}

// Value is the zero value of T for a failed Result.
func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Note() string {
	return r.note
}

func (r Result[T]) String() string {
	if r.isSuccess {
		return fmt.Sprintf("success: %v", r.value)
	}

	return "failure: " + r.err.Error()
}

type resultJSON[T any] struct {
	IsSuccess bool         `json:"isSuccess"`
	Value     T            `json:"value"`
	Error     *DomainError `json:"error,omitempty"`
	Note      string       `json:"note,omitempty"`
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON[T]{ //nolint:wrapcheck // export the underlying error
		IsSuccess: r.isSuccess,
		Value:     r.value,
		Error:     r.err,
		Note:      r.note,
	})
}

func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var raw resultJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err //nolint:wrapcheck // export the underlying error
	}

	r.isSuccess = raw.IsSuccess
	r.value = raw.Value
	r.err = raw.Error
	r.note = raw.Note

	return nil
}

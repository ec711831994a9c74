// Package outcome is the explicit success/failure channel for expected domain
// failures. Validators and entity mutators report through it instead of
// returning bare errors, so independent checks can be chained and the first
// violation wins. It is not used for infrastructure faults.
package outcome

import (
	dErrors "discussly/pkg/domain-errors"
)

// Outcome is the void result of a validation or mutation.
type Outcome struct {
	err *dErrors.Error
}

// Success returns the terminal success result.
func Success() Outcome {
	return Outcome{}
}

// Failure returns a terminal failure carrying a kind and message.
func Failure(kind dErrors.Kind, message string) Outcome {
	return Outcome{err: dErrors.New(kind, message)}
}

// Failuref is Failure with a formatted message.
func Failuref(kind dErrors.Kind, format string, args ...any) Outcome {
	return Outcome{err: dErrors.Newf(kind, format, args...)}
}

func (o Outcome) IsSuccess() bool { return o.err == nil }

func (o Outcome) IsFailure() bool { return o.err != nil }

// Combine returns o if o failed, otherwise next. Chaining independent
// validators this way keeps the first failing message and skips nothing the
// caller already evaluated; lazy evaluation, when needed, is expressed by
// checking IsFailure before computing the next operand.
func (o Outcome) Combine(next Outcome) Outcome {
	if o.err != nil {
		return o
	}
	return next
}

// Err exposes the failure as an error, nil on success.
func (o Outcome) Err() error {
	if o.err == nil {
		return nil
	}
	return o.err
}

// Of is a result carrying a value on success.
// Invariant: a success never carries an error; a failure never carries a value.
type Of[T any] struct {
	value T
	err   *dErrors.Error
}

// Value returns a successful result carrying v.
func Value[T any](v T) Of[T] {
	return Of[T]{value: v}
}

// Reject returns a failed result with a kind and message.
func Reject[T any](kind dErrors.Kind, message string) Of[T] {
	return Of[T]{err: dErrors.New(kind, message)}
}

// RejectErr adopts an existing failure, typically the Err of a void Outcome.
// Non-domain errors are treated as internal faults.
func RejectErr[T any](err error) Of[T] {
	if de, ok := err.(*dErrors.Error); ok {
		return Of[T]{err: de}
	}
	return Of[T]{err: dErrors.Wrap(dErrors.KindInternal, err.Error(), err)}
}

func (r Of[T]) IsSuccess() bool { return r.err == nil }

func (r Of[T]) IsFailure() bool { return r.err != nil }

// Err exposes the failure as an error, nil on success.
func (r Of[T]) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// MustValue returns the carried value. Reading the value of a failed result
// is a programming error and panics rather than yielding a zero value.
func (r Of[T]) MustValue() T {
	if r.err != nil {
		panic("outcome: value read from failed result: " + r.err.Message)
	}
	return r.value
}

// Unwrap bridges to the conventional (value, error) pair.
func (r Of[T]) Unwrap() (T, error) {
	return r.value, r.Err()
}

// Map transforms a successful value, passing failures through untouched.
func Map[T, U any](r Of[T], fn func(T) U) Of[U] {
	if r.err != nil {
		return Of[U]{err: r.err}
	}
	return Value(fn(r.value))
}

// Bind chains a dependent computation that may itself fail.
func Bind[T, U any](r Of[T], fn func(T) Of[U]) Of[U] {
	if r.err != nil {
		return Of[U]{err: r.err}
	}
	return fn(r.value)
}

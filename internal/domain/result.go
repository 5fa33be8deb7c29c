package domain

// Result is the outcome of an operation that can fail in an expected way.
// It holds either a value (success) or an error (failure), never both.
// Callers check OK before using Value.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful result carrying v.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail returns a failed result carrying err.
// A nil err is replaced with ErrInternalError so the result stays a failure.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = ErrInternalError
	}
	return Result[T]{err: err}
}

// OK reports whether the result is a success.
func (r Result[T]) OK() bool {
	return r.err == nil
}

// Value returns the success value, or the zero value of T on failure.
func (r Result[T]) Value() T {
	if r.err != nil {
		var zero T
		return zero
	}
	return r.value
}

// Err returns the failure error, or nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Unwrap returns the result as a conventional (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	return r.Value(), r.err
}

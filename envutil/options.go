package envutil

import (
	"fmt"
	"slices"
)

// Option modifies a Reader. It lets callers of String, Bool and friends
// supply defaults, missing-value errors and validation inline.
type Option[T any] func(Reader[T]) Reader[T]

// Default provides a default value for the Reader.
func Default[T any](dfl T) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		return rdr.WithDefault(dfl)
	}
}

// IfMissing provides an error to return if the Reader has no value.
func IfMissing[T any](err error) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		return rdr.WithErrorIfMissing(err)
	}
}

// Validate runs f on the value; a non-nil result becomes the Reader's error.
func Validate[T any](f func(T) error) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		return rdr.Map(func(val T) (T, error) {
			return val, f(val)
		})
	}
}

// OneOf rejects values outside the allowed set.
func OneOf[T comparable](allowed ...T) Option[T] {
	return Validate(func(val T) error {
		if slices.Contains(allowed, val) {
			return nil
		}

		return fmt.Errorf("%w: %v not in %v", ErrBadEnvVar, val, allowed)
	})
}

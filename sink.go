package pipes

import (
	"cmp"
	"slices"
	"strings"
)

// Number is the set of types Sum can add up.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Collect consumes p and returns its values as a slice.
//
// If p fails, Collect returns the values produced before the failure along
// with the error.
func Collect[T any](p Pipe[T]) ([]T, error) {
	var out []T
	for v, err := range p.All() {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// String consumes a Pipe of runes and returns them as a string.
func String(p Pipe[rune]) (string, error) {
	var buf strings.Builder
	for r, err := range p.All() {
		if err != nil {
			return buf.String(), err
		}
		buf.WriteRune(r)
	}
	return buf.String(), nil
}

// Join consumes a Pipe of strings and concatenates them, inserting sep
// between consecutive values.
func Join[S ~string](p Pipe[S], sep string) (S, error) {
	var buf strings.Builder
	first := true
	for s, err := range p.All() {
		if err != nil {
			return S(buf.String()), err
		}
		if !first {
			buf.WriteString(sep)
		}
		first = false
		buf.WriteString(string(s))
	}
	return S(buf.String()), nil
}

// Consume drains p, discarding its values. It is useful for pipelines run
// only for their side effects.
func Consume[T any](p Pipe[T]) error {
	for _, err := range p.All() {
		if err != nil {
			return err
		}
	}
	return nil
}

// Len consumes p and returns the number of values it produced.
func Len[T any](p Pipe[T]) (int, error) {
	n := 0
	for _, err := range p.All() {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Sum consumes p and returns the sum of its values.
func Sum[T Number](p Pipe[T]) (T, error) {
	return Fold(p, T(0), func(acc, item T) T {
		return acc + item
	})
}

// All reports whether predicate holds for every value of p. It stops at the
// first value for which it does not.
//
// All of an empty Pipe is true.
func All[T any](p Pipe[T], predicate Predicate[T]) (bool, error) {
	for v, err := range p.All() {
		if err != nil {
			return false, err
		}
		if !predicate(v) {
			return false, nil
		}
	}
	return true, nil
}

// Any reports whether predicate holds for at least one value of p. It stops
// at the first value for which it does.
func Any[T any](p Pipe[T], predicate Predicate[T]) (bool, error) {
	for v, err := range p.All() {
		if err != nil {
			return false, err
		}
		if predicate(v) {
			return true, nil
		}
	}
	return false, nil
}

// None reports whether predicate holds for no value of p.
func None[T any](p Pipe[T], predicate Predicate[T]) (bool, error) {
	found, err := Any(p, predicate)
	return !found && err == nil, err
}

// First returns the first value of p, or ErrEmpty.
//
// First pulls a single value from p.
func First[T any](p Pipe[T]) (T, error) {
	for v, err := range p.All() {
		return v, err
	}
	var zero T
	return zero, ErrEmpty
}

// Last consumes p and returns its last value, or ErrEmpty.
func Last[T any](p Pipe[T]) (T, error) {
	var last T
	found := false
	for v, err := range p.All() {
		if err != nil {
			var zero T
			return zero, err
		}
		last, found = v, true
	}
	if !found {
		return last, ErrEmpty
	}
	return last, nil
}

// Find returns the first value of p for which predicate holds, or ErrEmpty.
func Find[T any](p Pipe[T], predicate Predicate[T]) (T, error) {
	return First(Filter(p, predicate))
}

// Reduce combines the values of p from left to right using fn, starting with
// the first value. It returns ErrEmpty when p is empty.
func Reduce[T any](p Pipe[T], fn func(acc, item T) T) (T, error) {
	var acc T
	started := false
	for v, err := range p.All() {
		if err != nil {
			var zero T
			return zero, err
		}
		if !started {
			acc, started = v, true
			continue
		}
		acc = fn(acc, v)
	}
	if !started {
		return acc, ErrEmpty
	}
	return acc, nil
}

// Fold combines the values of p from left to right using fn, starting with
// initial.
func Fold[T, R any](p Pipe[T], initial R, fn func(acc R, item T) R) (R, error) {
	acc := initial
	for v, err := range p.All() {
		if err != nil {
			var zero R
			return zero, err
		}
		acc = fn(acc, v)
	}
	return acc, nil
}

// Sort returns a Pipe producing the values of p in ascending order.
//
// p is consumed entirely on the first pull.
func Sort[T cmp.Ordered](p Pipe[T]) Pipe[T] {
	return buffered(p, func(s []T) {
		slices.Sort(s)
	})
}

// SortFunc returns a Pipe producing the values of p ordered by compare. The
// sort is stable.
//
// p is consumed entirely on the first pull.
func SortFunc[T any](p Pipe[T], compare func(a, b T) int) Pipe[T] {
	if compare == nil {
		panic("pipes.SortFunc: compare must not be nil")
	}
	return buffered(p, func(s []T) {
		slices.SortStableFunc(s, compare)
	})
}

// Reverse returns a Pipe producing the values of p in reverse order.
//
// p is consumed entirely on the first pull.
func Reverse[T any](p Pipe[T]) Pipe[T] {
	return buffered(p, func(s []T) {
		slices.Reverse(s)
	})
}

// buffered collects p, reorders the values in place and produces them.
func buffered[T any](p Pipe[T], reorder func([]T)) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			values, err := Collect(p)
			if err != nil {
				fail(yield, err)
				return
			}
			reorder(values)
			for _, v := range values {
				if !yield(v, nil) {
					return
				}
			}
		},
	}
}

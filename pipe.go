package pipes

import (
	"io"
	"iter"

	"github.com/KasperOmsK/pipes/internal/iterx"
)

// Pipe represents a lazily-evaluated stream of values of type T.
//
// A Pipe is an immutable value: every transformation returns a new Pipe and
// leaves its input untouched, so a Pipe may be consumed more than once if its
// source allows it.
//
// Internally a Pipe is an iter.Seq2[T, error]. A stage that fails yields a
// single (zero, err) pair and stops; every downstream stage forwards that
// error unchanged.
//
// The zero Pipe is empty.
type Pipe[T any] struct {
	seq iter.Seq2[T, error]
}

// From wraps an iter.Seq into a Pipe.
func From[T any](seq iter.Seq[T]) Pipe[T] {
	if seq == nil {
		panic("pipes.From: seq must not be nil")
	}
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			for v := range seq {
				if !yield(v, nil) {
					return
				}
			}
		},
	}
}

// FromSeq2 wraps a sequence of (value, error) pairs into a Pipe. It is the
// inverse of Pipe.All and the way to write custom stages outside this
// package.
//
// seq must stop after yielding a non-nil error.
func FromSeq2[T any](seq iter.Seq2[T, error]) Pipe[T] {
	if seq == nil {
		panic("pipes.FromSeq2: seq must not be nil")
	}
	return Pipe[T]{seq: seq}
}

// FromSlice returns a Pipe producing the elements of in, in order.
func FromSlice[T any](in []T) Pipe[T] {
	return From(iterx.FromSlice(in))
}

// FromChan returns a Pipe producing the values received from in until it is
// closed.
func FromChan[T any](in chan T) Pipe[T] {
	return From(iterx.FromChan(in))
}

// Lines returns a Pipe producing the lines of r, without line endings.
// A read error ends the pipeline.
func Lines(r io.Reader) Pipe[string] {
	return Pipe[string]{seq: iterx.Lines(r)}
}

// Of returns a Pipe producing the given values.
func Of[T any](values ...T) Pipe[T] {
	return FromSlice(values)
}

// Fail returns a Pipe that fails with err as soon as it is iterated.
func Fail[T any](err error) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			fail(yield, err)
		},
	}
}

// Range returns a Pipe producing the integers in [start, stop).
func Range(start, stop int) Pipe[int] {
	return Pipe[int]{
		seq: func(yield func(int, error) bool) {
			for i := start; i < stop; i++ {
				if !yield(i, nil) {
					return
				}
			}
		},
	}
}

// Count returns an infinite Pipe producing start, start+1, start+2, ...
func Count(start int) Pipe[int] {
	return Pipe[int]{
		seq: func(yield func(int, error) bool) {
			for i := start; ; i++ {
				if !yield(i, nil) {
					return
				}
			}
		},
	}
}

// Chars returns a Pipe producing the runes of s.
func Chars(s string) Pipe[rune] {
	return Pipe[rune]{
		seq: func(yield func(rune, error) bool) {
			for _, r := range s {
				if !yield(r, nil) {
					return
				}
			}
		},
	}
}

// Repeat returns an infinite Pipe producing v.
func Repeat[T any](v T) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			for yield(v, nil) {
			}
		},
	}
}

// RepeatN returns a Pipe producing v n times.
func RepeatN[T any](v T, n int) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			for range n {
				if !yield(v, nil) {
					return
				}
			}
		},
	}
}

// All returns the underlying sequence of the Pipe.
//
// A failing pipe yields one final pair carrying a non-nil error.
func (p Pipe[T]) All() iter.Seq2[T, error] {
	if p.seq == nil {
		return func(func(T, error) bool) {}
	}
	return p.seq
}

// Results converts the Pipe into an iter.Seq of its values and a function
// reporting the error, if any, that ended the last iteration.
//
// The error function must be called after ranging over the values.
func (p Pipe[T]) Results() (iter.Seq[T], func() error) {
	var err error
	values := func(yield func(T) bool) {
		err = nil
		for v, e := range p.All() {
			if e != nil {
				err = e
				return
			}
			if !yield(v) {
				return
			}
		}
	}
	return values, func() error { return err }
}

// Values returns an iter.Seq of the values of the Pipe.
//
// Values is meant for pipelines that cannot fail; it panics with the
// pipeline error otherwise. Use Results or All for fallible pipelines.
func (p Pipe[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for v, err := range p.All() {
			if err != nil {
				panic(err)
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Tap returns a Pipe that calls fn on every value before passing it
// downstream unmodified.
//
// Tap panics if fn is nil.
func (p Pipe[T]) Tap(fn func(T)) Pipe[T] {
	if fn == nil {
		panic("pipes.Tap: fn must not be nil")
	}
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				fn(v)
				if !yield(v, nil) {
					return
				}
			}
		},
	}
}

// Then applies stages to the Pipe from left to right.
//
// p.Then(f, g) is equivalent to g(f(p)).
func (p Pipe[T]) Then(stages ...Stage[T, T]) Pipe[T] {
	for _, s := range stages {
		p = s(p)
	}
	return p
}

// fail yields err as the last element of a sequence.
func fail[T any](yield func(T, error) bool, err error) {
	var zero T
	yield(zero, err)
}

package pipes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Inspect returns a Pipe that prints every value to w, one per line, before
// passing it downstream unmodified.
//
// A write error ends the pipeline.
func Inspect[T any](p Pipe[T], w io.Writer) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if _, err := fmt.Fprintln(w, v); err != nil {
					fail(yield, fmt.Errorf("pipes.Inspect: %w", err))
					return
				}
				if !yield(v, nil) {
					return
				}
			}
		},
	}
}

// Log returns a Pipe that logs every value at debug level with msg before
// passing it downstream unmodified.
func Log[T any](p Pipe[T], logger *slog.Logger, msg string) Pipe[T] {
	if logger == nil {
		panic("pipes.Log: logger must not be nil")
	}
	logged := Enumerate(p, 0).Tap(func(item Indexed[T]) {
		logger.Log(context.Background(), slog.LevelDebug, msg, "index", item.Index, "item", item.Value)
	})
	return Map(logged, func(item Indexed[T]) T {
		return item.Value
	})
}

// AssertEach returns a Pipe that checks predicate against every value. The
// first value for which it does not hold ends the pipeline with a
// PipelineError wrapping ErrAssertion.
func AssertEach[T any](p Pipe[T], predicate Predicate[T]) Pipe[T] {
	if predicate == nil {
		panic("pipes.AssertEach: predicate must not be nil")
	}
	return TryMap(p, func(item T) (T, error) {
		if !predicate(item) {
			return item, ErrAssertion
		}
		return item, nil
	})
}

package pipes

type (

	// MapFunc is a pure mapping function used by Map that transforms a value
	// of type In into a value of type Out.
	MapFunc[In, Out any] func(in In) Out

	// TryMapFunc is a mapping function that may return an error.
	//
	// A non-nil error ends the pipeline; it is reported wrapped in a
	// PipelineError.
	TryMapFunc[In, Out any] func(in In) (Out, error)

	// Predicate represents a filtering function that returns true when the
	// provided value should be included in the output stream.
	Predicate[T any] func(item T) bool
)

// Map transforms each input value using fn and returns a new Pipe producing
// the mapped values.
//
// Errors from the input Pipe are preserved.
func Map[In, Out any](p Pipe[In], fn MapFunc[In, Out]) Pipe[Out] {
	if fn == nil {
		panic("pipes.Map: fn must not be nil")
	}
	return Pipe[Out]{
		seq: func(yield func(Out, error) bool) {
			for in, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if !yield(fn(in), nil) {
					return
				}
			}
		},
	}
}

// FlatMap transforms each input value using fn and returns a Pipe producing
// the flattened output values.
//
// FlatMap is equivalent to calling Flatten(Map(p, fn)).
//
// Errors from the input Pipe are preserved.
func FlatMap[In, Out any](p Pipe[In], fn MapFunc[In, []Out]) Pipe[Out] {
	return Flatten(Map(p, fn))
}

// TryMap transforms each input value using fn.
//
// The first non-nil error returned by fn ends the pipeline. It is reported as
// a PipelineError carrying the offending item.
//
// Errors from the input Pipe are preserved.
func TryMap[In, Out any](p Pipe[In], fn TryMapFunc[In, Out]) Pipe[Out] {
	if fn == nil {
		panic("pipes.TryMap: fn must not be nil")
	}
	return Pipe[Out]{
		seq: func(yield func(Out, error) bool) {
			for in, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				result, err := fn(in)
				if err != nil {
					fail(yield, error(PipelineError{
						Item:   in,
						Reason: err,
					}))
					return
				}
				if !yield(result, nil) {
					return
				}
			}
		},
	}
}

// FlatTryMap transforms each input value using fn and returns a Pipe producing
// the flattened output values.
//
// FlatTryMap is equivalent to calling Flatten(TryMap(p, fn)).
//
// Errors from the input Pipe are preserved.
func FlatTryMap[In, Out any](p Pipe[In], fn TryMapFunc[In, []Out]) Pipe[Out] {
	return Flatten(TryMap(p, fn))
}

// Filter returns a Pipe that yields only the values for which predicate
// returns true.
//
// Errors from the input Pipe are preserved.
func Filter[T any](p Pipe[T], predicate Predicate[T]) Pipe[T] {
	if predicate == nil {
		panic("pipes.Filter: predicate must not be nil")
	}
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			for in, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if predicate(in) {
					if !yield(in, nil) {
						return
					}
				}
			}
		},
	}
}

// Reject returns a Pipe that yields only the values for which predicate
// returns false. It is the complement of Filter.
func Reject[T any](p Pipe[T], predicate Predicate[T]) Pipe[T] {
	if predicate == nil {
		panic("pipes.Reject: predicate must not be nil")
	}
	return Filter(p, func(item T) bool {
		return !predicate(item)
	})
}

// Truthy drops the zero values of T.
func Truthy[T comparable](p Pipe[T]) Pipe[T] {
	var zero T
	return Filter(p, func(item T) bool {
		return item != zero
	})
}

// Flatten converts a Pipe of slices into a Pipe of their elements,
// emitting the items of each slice in order.
//
// Errors from the input Pipe are preserved.
func Flatten[T any](p Pipe[[]T]) Pipe[T] {
	out := Pipe[T]{
		seq: func(yield func(T, error) bool) {
			for slice, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				for _, item := range slice {
					if !yield(item, nil) {
						return
					}
				}
			}
		},
	}
	return out
}

// Batches groups incoming values into slices of the given size and returns a
// Pipe producing those slices.
//
// The final batch may be smaller than size. Use Chunks to drop it.
//
// Batches panics if size is not positive.
//
// Errors from the input Pipe are preserved.
func Batches[T any](p Pipe[T], size int) Pipe[[]T] {
	if size <= 0 {
		panic("pipes.Batches: size must be positive")
	}
	return chunk(p, size, true)
}

// Chunks groups incoming values into slices of exactly n values.
//
// A trailing group holding fewer than n values is dropped, so
// Chunks(Range(0, 7), 3) produces [0 1 2] and [3 4 5].
//
// Chunks panics if n is not positive.
//
// Errors from the input Pipe are preserved.
func Chunks[T any](p Pipe[T], n int) Pipe[[]T] {
	if n <= 0 {
		panic("pipes.Chunks: n must be positive")
	}
	return chunk(p, n, false)
}

func chunk[T any](p Pipe[T], size int, keepPartial bool) Pipe[[]T] {
	return Pipe[[]T]{
		seq: func(yield func([]T, error) bool) {
			// Every chunk gets its own backing array: callers such as Collect
			// retain them.
			accum := make([]T, 0, size)
			for i, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				accum = append(accum, i)
				if len(accum) == size {
					if !yield(accum, nil) {
						return
					}
					accum = make([]T, 0, size)
				}
			}

			if keepPartial && len(accum) > 0 {
				yield(accum, nil)
			}
		},
	}
}

// GroupBy groups consecutive input values according to a key function and
// returns a Pipe producing slices of those grouped values.
//
// GroupBy does not reorder values; it relies on the input Pipe already being
// ordered by the grouping key if consistent grouping is desired.
//
// In other words, Values are grouped only when they appear consecutively with the same key.
// When the key returned by keyFunc changes, the current group is emitted and
// a new group is started.
//
// For example, given input values:
//
//	A, A, B, B, A
//
// GroupBy will emit:
//
//	[A, A], [B, B], [A]
//
// Errors from the input Pipe are preserved.
func GroupBy[T any, K comparable](p Pipe[T], keyFunc func(T) K) Pipe[[]T] {
	if keyFunc == nil {
		panic("pipes.GroupBy: keyFunc must not be nil")
	}
	return Pipe[[]T]{
		seq: func(yield func([]T, error) bool) {
			accum := make([]T, 0)
			var currentGroupKey K
			for i, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				k := keyFunc(i)
				if k != currentGroupKey && len(accum) > 0 {
					if !yield(accum, nil) {
						return
					}
					accum = make([]T, 0)
				}
				currentGroupKey = k
				accum = append(accum, i)
			}

			// yield the last group
			if len(accum) > 0 {
				yield(accum, nil)
			}
		},
	}
}

// GroupByAggregate groups input values by key and aggregates them using user-supplied
// initialization and update callbacks, producing one aggregated output value per group.
//
// GroupByAggregate is equivalent to performing a GroupBy followed by a Map,
// but does so without allocating a slice for each group. This makes it preferred
// for pipelines where groups may be large.
//
// initFunc is called when a new group starts. It receives the first value of the
// group and should return the initial accumulator for that group.
//
// updateFunc is called for each value in the current group, including the
// first. It receives a pointer to the accumulator and the current input
// value, and should update the accumulator in place.
//
// For example, to sum values in each group:
//
//	initFunc := func(v int) int {
//	    return 0 // start at 0
//	}
//
//	updateFunc := func(acc *int, v int) {
//	    *acc += v // add the value to the accumulator
//	}
//
// Like GroupBy, GroupByAggregate does not reorder input values. The input Pipe
// must already be ordered by key if consistent aggregation per key is desired.
//
// Errors from the input Pipe are preserved.
func GroupByAggregate[In any, K comparable, Out any](
	p Pipe[In],
	keyFunc func(In) K,
	initFunc func(first In) Out,
	updateFunc func(acc *Out, item In)) Pipe[Out] {

	if keyFunc == nil || initFunc == nil || updateFunc == nil {
		panic("pipes.GroupByAggregate: callbacks must not be nil")
	}

	return Pipe[Out]{
		seq: func(yield func(Out, error) bool) {
			var acc *Out
			var currentGroupKey K
			for i, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				k := keyFunc(i)
				if k != currentGroupKey && acc != nil {
					if !yield(*acc, nil) {
						return
					}
					acc = nil
				}

				if acc == nil {
					// new group
					newAcc := initFunc(i)
					acc = &newAcc
				}

				currentGroupKey = k
				updateFunc(acc, i)
			}

			if acc != nil {
				yield(*acc, nil)
			}
		},
	}
}

// Concat returns a Pipe producing the values of each input Pipe in turn.
//
// Iteration stops at the first error of any input.
func Concat[T any](pipes ...Pipe[T]) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			for _, p := range pipes {
				for v, err := range p.All() {
					if err != nil {
						fail(yield, err)
						return
					}
					if !yield(v, nil) {
						return
					}
				}
			}
		},
	}
}

// ChainWith returns a Pipe producing the values of p followed by the values
// of others.
func ChainWith[T any](p Pipe[T], others ...Pipe[T]) Pipe[T] {
	return Concat(append([]Pipe[T]{p}, others...)...)
}

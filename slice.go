package pipes

import "iter"

// Indexed is a value paired with its position, as produced by Enumerate.
type Indexed[T any] struct {
	Index int
	Value T
}

// Pair holds two values taken from two pipes. It is produced by Zip.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Take returns a Pipe producing at most the first n values of p.
//
// Take never pulls more than n values from p.
func Take[T any](p Pipe[T], n int) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			if n <= 0 {
				return
			}
			taken := 0
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if !yield(v, nil) {
					return
				}
				taken++
				if taken == n {
					return
				}
			}
		},
	}
}

// Drop returns a Pipe that skips the first n values of p.
func Drop[T any](p Pipe[T], n int) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			seen := 0
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if seen < n {
					seen++
					continue
				}
				if !yield(v, nil) {
					return
				}
			}
		},
	}
}

// TakeWhile returns a Pipe producing values of p as long as predicate holds.
func TakeWhile[T any](p Pipe[T], predicate Predicate[T]) Pipe[T] {
	if predicate == nil {
		panic("pipes.TakeWhile: predicate must not be nil")
	}
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if !predicate(v) || !yield(v, nil) {
					return
				}
			}
		},
	}
}

// DropWhile returns a Pipe that skips values of p while predicate holds and
// produces everything after that.
func DropWhile[T any](p Pipe[T], predicate Predicate[T]) Pipe[T] {
	if predicate == nil {
		panic("pipes.DropWhile: predicate must not be nil")
	}
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			dropping := true
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if dropping && predicate(v) {
					continue
				}
				dropping = false
				if !yield(v, nil) {
					return
				}
			}
		},
	}
}

// Butlast returns a Pipe producing every value of p except the last one.
func Butlast[T any](p Pipe[T]) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			var prev T
			started := false
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if started && !yield(prev, nil) {
					return
				}
				prev, started = v, true
			}
		},
	}
}

// Tail returns a Pipe producing the last n values of p.
//
// Tail consumes p entirely before producing anything, keeping at most n
// values in memory.
func Tail[T any](p Pipe[T], n int) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			ring := make([]T, 0, max(n, 0))
			next := 0
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if n <= 0 {
					continue
				}
				if len(ring) < n {
					ring = append(ring, v)
					continue
				}
				ring[next] = v
				next = (next + 1) % n
			}
			for i := range len(ring) {
				if !yield(ring[(next+i)%len(ring)], nil) {
					return
				}
			}
		},
	}
}

// Islice returns a Pipe producing the values of p at positions start,
// start+step, start+2*step, ... up to but excluding stop.
//
// A negative stop means no upper bound.
//
// Islice panics if start is negative or step is not positive.
func Islice[T any](p Pipe[T], start, stop, step int) Pipe[T] {
	if start < 0 {
		panic("pipes.Islice: start must not be negative")
	}
	if step <= 0 {
		panic("pipes.Islice: step must be positive")
	}
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			if stop >= 0 && start >= stop {
				return
			}
			pos := 0
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if pos >= start && (pos-start)%step == 0 {
					if !yield(v, nil) {
						return
					}
				}
				pos++
				if stop >= 0 && pos >= stop {
					return
				}
			}
		},
	}
}

// Interpose returns a Pipe producing the values of p separated by sep.
func Interpose[T any](p Pipe[T], sep T) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			first := true
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if !first && !yield(sep, nil) {
					return
				}
				first = false
				if !yield(v, nil) {
					return
				}
			}
		},
	}
}

// Enumerate pairs every value of p with its position, counting from start.
func Enumerate[T any](p Pipe[T], start int) Pipe[Indexed[T]] {
	return Pipe[Indexed[T]]{
		seq: func(yield func(Indexed[T], error) bool) {
			i := start
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if !yield(Indexed[T]{Index: i, Value: v}, nil) {
					return
				}
				i++
			}
		},
	}
}

// Alternate returns a Pipe producing every other value of p, starting with
// the first.
func Alternate[T any](p Pipe[T]) Pipe[T] {
	even := Filter(Enumerate(p, 0), func(item Indexed[T]) bool {
		return item.Index%2 == 0
	})
	return Map(even, func(item Indexed[T]) T {
		return item.Value
	})
}

// Unique returns a Pipe producing the first occurrence of every distinct
// value of p, in order of first appearance.
//
// Unique remembers every distinct value it has produced.
func Unique[T comparable](p Pipe[T]) Pipe[T] {
	return UniqueBy(p, func(item T) T { return item })
}

// UniqueBy is like Unique but compares values by the key returned by keyFunc.
func UniqueBy[T any, K comparable](p Pipe[T], keyFunc func(T) K) Pipe[T] {
	if keyFunc == nil {
		panic("pipes.UniqueBy: keyFunc must not be nil")
	}
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			seen := make(map[K]struct{})
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				k := keyFunc(v)
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
				if !yield(v, nil) {
					return
				}
			}
		},
	}
}

// Squeeze collapses runs of equal consecutive values into a single value.
//
// For example, 1 3 3 1 2 2 becomes 1 3 1 2.
func Squeeze[T comparable](p Pipe[T]) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			var prev T
			started := false
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if started && v == prev {
					continue
				}
				prev, started = v, true
				if !yield(v, nil) {
					return
				}
			}
		},
	}
}

// Cycle returns a Pipe producing the values of p, then repeating them
// forever. The values of the first pass are saved in memory.
//
// Cycle of an empty Pipe is empty.
func Cycle[T any](p Pipe[T]) Pipe[T] {
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			var saved []T
			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				saved = append(saved, v)
				if !yield(v, nil) {
					return
				}
			}
			if len(saved) == 0 {
				return
			}
			for {
				for _, v := range saved {
					if !yield(v, nil) {
						return
					}
				}
			}
		},
	}
}

// Zip pairs values of a and b element by element. The resulting Pipe stops as
// soon as either input is exhausted.
func Zip[A, B any](a Pipe[A], b Pipe[B]) Pipe[Pair[A, B]] {
	return Pipe[Pair[A, B]]{
		seq: func(yield func(Pair[A, B], error) bool) {
			nextB, stop := iter.Pull2(b.All())
			defer stop()

			for va, err := range a.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				vb, err, ok := nextB()
				if !ok {
					return
				}
				if err != nil {
					fail(yield, err)
					return
				}
				if !yield(Pair[A, B]{First: va, Second: vb}, nil) {
					return
				}
			}
		},
	}
}

// Traverse flattens a tree of values depth-first.
//
// children reports the sub-values of a value and whether it has any structure
// at all; values for which it reports false are leaves and are produced as
// is. A value with structure but no children produces nothing.
//
// children is applied to the values of p, never to p itself: the top-level
// values are walked in the order p produces them.
func Traverse[T any](p Pipe[T], children func(T) ([]T, bool)) Pipe[T] {
	if children == nil {
		panic("pipes.Traverse: children must not be nil")
	}
	return Pipe[T]{
		seq: func(yield func(T, error) bool) {
			var walk func(T) bool
			walk = func(v T) bool {
				kids, ok := children(v)
				if !ok {
					return yield(v, nil)
				}
				for _, kid := range kids {
					if !walk(kid) {
						return false
					}
				}
				return true
			}

			for v, err := range p.All() {
				if err != nil {
					fail(yield, err)
					return
				}
				if !walk(v) {
					return
				}
			}
		},
	}
}

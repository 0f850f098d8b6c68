package pipes

import "iter"

type (

	// Stage is a pipe wrapper: a transformation from one Pipe to another.
	//
	// Any function with the signature func(Pipe[In]) Pipe[Out], such as
	// Squeeze[int] or Butlast[string], is a Stage. Transformations taking
	// extra arguments become stages through Bind and Bind2.
	Stage[In, Out any] func(Pipe[In]) Pipe[Out]

	// Sink is a terminal transformation: it consumes a Pipe and returns a
	// single result, such as Collect or Len.
	Sink[T, R any] func(Pipe[T]) (R, error)
)

// Apply returns s(p).
func Apply[In, Out any](p Pipe[In], s Stage[In, Out]) Pipe[Out] {
	return s(p)
}

// Bind binds the extra argument of a parameterized transformation, turning it
// into a Stage.
//
//	takeThree := pipes.Bind(pipes.Take[int], 3)
//	evens := pipes.Bind(pipes.Filter[int], isEven)
func Bind[In, A, Out any](fn func(Pipe[In], A) Pipe[Out], arg A) Stage[In, Out] {
	if fn == nil {
		panic("pipes.Bind: fn must not be nil")
	}
	return func(p Pipe[In]) Pipe[Out] {
		return fn(p, arg)
	}
}

// Bind2 is like Bind for transformations taking two extra arguments.
func Bind2[In, A, B, Out any](fn func(Pipe[In], A, B) Pipe[Out], a A, b B) Stage[In, Out] {
	if fn == nil {
		panic("pipes.Bind2: fn must not be nil")
	}
	return func(p Pipe[In]) Pipe[Out] {
		return fn(p, a, b)
	}
}

// BindSink binds the extra argument of a parameterized terminal, such as Any
// or Find, turning it into a Sink.
func BindSink[T, A, R any](fn func(Pipe[T], A) (R, error), arg A) Sink[T, R] {
	if fn == nil {
		panic("pipes.BindSink: fn must not be nil")
	}
	return func(p Pipe[T]) (R, error) {
		return fn(p, arg)
	}
}

// Chain is a partial pipe: an ordered, reusable sequence of stages waiting for
// an input.
//
// Chains are immutable. Then returns a new Chain and leaves the receiver
// untouched, so a Chain can be extended in several directions:
//
//	base := pipes.P[int]().Then(pipes.Squeeze[int])
//	firstThree := base.Then(pipes.Bind(pipes.Take[int], 3))
//	distinct := base.Then(pipes.Unique[int])
//
// Applying a Chain runs its stages in the order they were added, exactly as
// chaining them by hand would.
type Chain[In, Out any] struct {
	apply func(Pipe[In]) Pipe[Out]
	n     int
}

// P starts a Chain over values of type T. The empty Chain is the identity.
func P[T any]() Chain[T, T] {
	return Chain[T, T]{
		apply: func(p Pipe[T]) Pipe[T] { return p },
	}
}

// Then returns a new Chain running the stages of c followed by s.
//
// Then is the way to append a stage that changes the element type; stages
// that keep it can use the Chain.Then method.
func Then[In, Mid, Out any](c Chain[In, Mid], s Stage[Mid, Out]) Chain[In, Out] {
	if s == nil {
		panic("pipes.Then: stage must not be nil")
	}
	prev := c.mustApply()
	return Chain[In, Out]{
		apply: func(p Pipe[In]) Pipe[Out] {
			return s(prev(p))
		},
		n: c.n + 1,
	}
}

// Then returns a new Chain running the stages of c followed by stages.
func (c Chain[In, Out]) Then(stages ...Stage[Out, Out]) Chain[In, Out] {
	out := c
	for _, s := range stages {
		out = Then(out, s)
	}
	return out
}

// Len returns the number of stages recorded in c.
func (c Chain[In, Out]) Len() int {
	return c.n
}

// Apply runs the stages of c against p and returns the resulting Pipe.
//
// Like every stage, Apply is lazy: no value is pulled until the result is
// consumed.
func (c Chain[In, Out]) Apply(p Pipe[In]) Pipe[Out] {
	return c.mustApply()(p)
}

// Run is shorthand for c.Apply(From(seq)).
func (c Chain[In, Out]) Run(seq iter.Seq[In]) Pipe[Out] {
	return c.Apply(From(seq))
}

// Stage returns c as a single Stage, so that chains can be nested into other
// chains.
func (c Chain[In, Out]) Stage() Stage[In, Out] {
	return c.mustApply()
}

func (c Chain[In, Out]) mustApply() func(Pipe[In]) Pipe[Out] {
	if c.apply == nil {
		panic("pipes: Chain must be started with P")
	}
	return c.apply
}

// Finish closes c with a terminal, returning a Sink that runs the whole
// chain against its input.
func Finish[In, Out, R any](c Chain[In, Out], sink Sink[Out, R]) Sink[In, R] {
	if sink == nil {
		panic("pipes.Finish: sink must not be nil")
	}
	apply := c.mustApply()
	return func(p Pipe[In]) (R, error) {
		return sink(apply(p))
	}
}

// Compose returns the function applying f then g to a single value.
//
// It is the per-value counterpart of Chain, typically used to build the
// callback of Map:
//
//	codes := pipes.Map(pipes.Chars("ABC"), pipes.Compose(toInt, strconv.Itoa))
func Compose[A, B, C any](f func(A) B, g func(B) C) func(A) C {
	if f == nil || g == nil {
		panic("pipes.Compose: functions must not be nil")
	}
	return func(a A) C {
		return g(f(a))
	}
}

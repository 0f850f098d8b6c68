/*
Package pipes provides lazy, composable transformations over iter.Seq,
in the spirit of Unix pipes: values flow from left to right through a
series of small stages.

This package is built around the concept of Pipes, a Pipe[T] represents
a lazily-evaluated stream of values of type T.

All transformations (Map, Filter, Take, Chunks, Unique, Squeeze, and more)
are provided as package-level functions taking a Pipe first. Each
transformation returns a new Pipe, allowing pipelines to be composed through
simple chaining. Values are only produced when a terminal (Collect, Len,
Sum, First, ...) or the caller ranges over the pipe, making all pipelines
demand-driven. Stopping early stops every upstream stage.

Example of a simple pipeline:

	isEven := func(v int) bool { return v%2 == 0 }
	isMul3 := func(v int) bool { return v%3 == 0 }

	p := pipes.Range(0, 9)
	p = pipes.Filter(p, isEven)
	p = pipes.Reject(p, isMul3)

	vals, err := pipes.Collect(p) // [2 4 8]

# Stages and partial pipes

A Stage is any func(Pipe[In]) Pipe[Out]. Stages with extra parameters are
curried with Bind:

	p := pipes.Range(0, 9).Then(
		pipes.Bind(pipes.Filter[int], isEven),
		pipes.Bind(pipes.Reject[int], isMul3),
	)

A Chain, started with P, records stages without running them. The recorded
chain is immutable and can be applied to any number of inputs:

	s := pipes.P[int]().Then(
		pipes.Bind(pipes.Filter[int], isEven),
		pipes.Bind(pipes.Reject[int], isMul3),
	)
	vals, err := pipes.Collect(s.Apply(pipes.Range(0, 9))) // [2 4 8]

Stages that change the element type are appended with the Then function,
and a chain is closed by a terminal with Finish.

# Errors

Pipes never swallow errors. A callback failing in TryMap or AssertEach ends
the pipeline; the error, wrapped in a PipelineError, flows unchanged through
every downstream stage and is returned by the terminal. Invalid arguments,
such as a non-positive chunk size, cause a panic when the stage is built.
*/
package pipes

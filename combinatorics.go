package pipes

// Combinations returns a Pipe producing every r-length combination of the
// values of p, in lexicographic order of positions.
//
// p is consumed entirely on the first pull. Combinations panics if r is
// negative.
func Combinations[T any](p Pipe[T], r int) Pipe[[]T] {
	if r < 0 {
		panic("pipes.Combinations: r must not be negative")
	}
	return Pipe[[]T]{
		seq: func(yield func([]T, error) bool) {
			pool, err := Collect(p)
			if err != nil {
				fail(yield, err)
				return
			}
			n := len(pool)
			if r > n {
				return
			}

			indices := make([]int, r)
			for i := range indices {
				indices[i] = i
			}
			if !yield(pick(pool, indices), nil) {
				return
			}

			for {
				i := r - 1
				for ; i >= 0; i-- {
					if indices[i] != i+n-r {
						break
					}
				}
				if i < 0 {
					return
				}
				indices[i]++
				for j := i + 1; j < r; j++ {
					indices[j] = indices[j-1] + 1
				}
				if !yield(pick(pool, indices), nil) {
					return
				}
			}
		},
	}
}

// Permutations returns a Pipe producing every r-length ordering of the values
// of p, in lexicographic order of positions.
//
// p is consumed entirely on the first pull. Permutations panics if r is
// negative.
func Permutations[T any](p Pipe[T], r int) Pipe[[]T] {
	if r < 0 {
		panic("pipes.Permutations: r must not be negative")
	}
	return Pipe[[]T]{
		seq: func(yield func([]T, error) bool) {
			pool, err := Collect(p)
			if err != nil {
				fail(yield, err)
				return
			}
			n := len(pool)
			if r > n {
				return
			}

			indices := make([]int, n)
			for i := range indices {
				indices[i] = i
			}
			cycles := make([]int, r)
			for i := range cycles {
				cycles[i] = n - i
			}
			if !yield(pick(pool, indices[:r]), nil) {
				return
			}

		outer:
			for n > 0 {
				for i := r - 1; i >= 0; i-- {
					cycles[i]--
					if cycles[i] == 0 {
						first := indices[i]
						copy(indices[i:], indices[i+1:])
						indices[n-1] = first
						cycles[i] = n - i
						continue
					}
					j := cycles[i]
					indices[i], indices[n-j] = indices[n-j], indices[i]
					if !yield(pick(pool, indices[:r]), nil) {
						return
					}
					continue outer
				}
				return
			}
		},
	}
}

// Transpose turns a Pipe of rows into a Pipe of columns. Rows longer than the
// shortest one are truncated.
//
// p is consumed entirely on the first pull.
func Transpose[T any](p Pipe[[]T]) Pipe[[]T] {
	return Pipe[[]T]{
		seq: func(yield func([]T, error) bool) {
			rows, err := Collect(p)
			if err != nil {
				fail(yield, err)
				return
			}
			if len(rows) == 0 {
				return
			}
			width := len(rows[0])
			for _, row := range rows[1:] {
				width = min(width, len(row))
			}
			for col := range width {
				column := make([]T, len(rows))
				for i, row := range rows {
					column[i] = row[col]
				}
				if !yield(column, nil) {
					return
				}
			}
		},
	}
}

func pick[T any](pool []T, indices []int) []T {
	out := make([]T, len(indices))
	for i, idx := range indices {
		out[i] = pool[idx]
	}
	return out
}

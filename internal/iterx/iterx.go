package iterx

import (
	"bufio"
	"io"
	"iter"
)

func FromSlice[T any](in []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range in {
			if !yield(item) {
				break
			}
		}
	}
}

func FromChan[T any](in chan T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range in {
			if !yield(i) {
				break
			}
		}
	}
}

// Lines yields the lines of r without their line endings. A read error is
// yielded last, paired with an empty line.
func Lines(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			if !yield(sc.Text(), nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield("", err)
		}
	}
}

package internal

import (
	"iter"
	"slices"
)

// Permutations yields every ordering of values, using Heap's algorithm.
// Each yielded slice is a fresh copy that the consumer may retain.
func Permutations[T any](values []T) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		work := slices.Clone(values)
		n := len(work)
		if n == 0 {
			return
		}

		if !yield(slices.Clone(work)) {
			return
		}

		count := make([]int, n)
		for i := 1; i < n; {
			if count[i] < i {
				if i%2 == 0 {
					work[0], work[i] = work[i], work[0]
				} else {
					work[count[i]], work[i] = work[i], work[count[i]]
				}
				if !yield(slices.Clone(work)) {
					return
				}
				count[i]++
				i = 1
			} else {
				count[i] = 0
				i++
			}
		}
	}
}

// Range returns the integers in [lo, hi].
func Range[T ~int | ~int64](lo, hi T) (values []T) {
	for v := lo; v <= hi; v++ {
		values = append(values, v)
	}
	return
}

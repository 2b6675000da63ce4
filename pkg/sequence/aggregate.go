package sequence

import "iter"

// Fold reduces seq into a single value starting from init.
func Fold[T, A any](seq iter.Seq[T], init A, fn func(acc A, v T) A) A {
	acc := init
	for v := range seq {
		acc = fn(acc, v)
	}
	return acc
}

// MaxBy returns the element with the largest measure.
// Ties keep the earliest element: the best is replaced only on a strictly larger measure.
// ok is false when seq is empty.
func MaxBy[T any](seq iter.Seq[T], measure func(T) float64) (best T, ok bool) {
	var bestMeasure float64
	for v := range seq {
		m := measure(v)
		if !ok || m > bestMeasure {
			best, bestMeasure, ok = v, m, true
		}
	}
	return best, ok
}

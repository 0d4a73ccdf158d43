package internal

import (
	"iter"
	"slices"
)

// IterSeqConcat yields every value of each sequence in turn.
func IterSeqConcat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for val := range seq {
				if !yield(val) {
					return
				}
			}
		}
	}
}

// IterRing yields the values of a ring buffer whose oldest value is at
// head, oldest first.
func IterRing[T any](ring []T, head int) iter.Seq[T] {
	if head < 0 || head >= len(ring) {
		head = 0
	}

	return IterSeqConcat(slices.Values(ring[head:]), slices.Values(ring[:head]))
}

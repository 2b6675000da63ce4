package sequence

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidCapacity is returned when a window is created with capacity <= 0.
var ErrInvalidCapacity = errors.New("window capacity must be positive")

// Window is a bounded FIFO of the most recent values.
// Once full, every Push evicts the oldest value. Not safe for concurrent use.
type Window[T any] struct {
	data []T
	head int // index of the oldest value
	size int
}

// NewWindow creates an empty window holding at most capacity values.
func NewWindow[T any](capacity int) (*Window[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return &Window[T]{data: make([]T, capacity)}, nil
}

// Push appends v. When the window is full the oldest value is evicted
// and returned with ok set to true.
func (w *Window[T]) Push(v T) (evicted T, ok bool) {
	capacity := len(w.data)
	if w.size < capacity {
		w.data[(w.head+w.size)%capacity] = v
		w.size++
		return evicted, false
	}

	evicted = w.data[w.head]
	w.data[w.head] = v
	w.head = (w.head + 1) % capacity
	return evicted, true
}

func (w *Window[T]) Len() int { return w.size }
func (w *Window[T]) Cap() int { return len(w.data) }

func (w *Window[T]) IsEmpty() bool { return w.size == 0 }
func (w *Window[T]) IsFull() bool  { return w.size == len(w.data) }

// At returns the i-th resident value, 0 being the oldest.
func (w *Window[T]) At(i int) (T, bool) {
	if i < 0 || i >= w.size {
		var zero T
		return zero, false
	}
	return w.data[(w.head+i)%len(w.data)], true
}

// Newest returns the most recently pushed value.
func (w *Window[T]) Newest() (T, bool) {
	return w.At(w.size - 1)
}

// All yields resident values from oldest to newest.
func (w *Window[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < w.size; i++ {
			if !yield(w.data[(w.head+i)%len(w.data)]) {
				return
			}
		}
	}
}

// Slice copies resident values from oldest to newest.
func (w *Window[T]) Slice() []T {
	out := make([]T, 0, w.size)
	for v := range w.All() {
		out = append(out, v)
	}
	return out
}

// Clear drops every value but keeps the capacity.
func (w *Window[T]) Clear() {
	clear(w.data)
	w.head = 0
	w.size = 0
}

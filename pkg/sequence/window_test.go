package sequence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindow_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, -100} {
		w, err := NewWindow[int](capacity)
		require.ErrorIs(t, err, ErrInvalidCapacity)
		require.Nil(t, w)
	}
}

func TestWindow_LengthBelowCapacity(t *testing.T) {
	for n := 1; n <= 8; n++ {
		w, err := NewWindow[int](n)
		require.NoError(t, err)
		for m := 1; m <= n; m++ {
			_, evicted := w.Push(m)
			require.False(t, evicted)
			require.Equal(t, m, w.Len())
		}
		require.True(t, w.IsFull())
	}
}

func TestWindow_EvictsOldestInOrder(t *testing.T) {
	for n := 1; n <= 6; n++ {
		w, err := NewWindow[int](n)
		require.NoError(t, err)

		total := n*3 + 1
		for i := 0; i < total; i++ {
			old, evicted := w.Push(i)
			if i >= n {
				require.True(t, evicted)
				require.Equal(t, i-n, old)
			}
		}

		require.Equal(t, n, w.Len())
		want := make([]int, 0, n)
		for i := total - n; i < total; i++ {
			want = append(want, i)
		}
		require.Equal(t, want, w.Slice())
	}
}

func TestWindow_AtAndNewest(t *testing.T) {
	w, err := NewWindow[string](2)
	require.NoError(t, err)

	_, ok := w.Newest()
	require.False(t, ok)

	w.Push("a")
	w.Push("b")
	w.Push("c")

	v, ok := w.At(0)
	require.True(t, ok)
	require.Equal(t, "b", v)

	v, ok = w.Newest()
	require.True(t, ok)
	require.Equal(t, "c", v)

	_, ok = w.At(2)
	require.False(t, ok)
	_, ok = w.At(-1)
	require.False(t, ok)
}

func TestWindow_Clear(t *testing.T) {
	w, err := NewWindow[int](3)
	require.NoError(t, err)
	w.Push(1)
	w.Push(2)
	w.Push(3)
	w.Push(4)

	w.Clear()
	require.True(t, w.IsEmpty())
	require.Equal(t, 3, w.Cap())
	require.Empty(t, w.Slice())

	w.Push(9)
	require.Equal(t, []int{9}, w.Slice())
}

func TestWindow_AllStopsEarly(t *testing.T) {
	w, err := NewWindow[int](4)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		w.Push(i)
	}

	var seen []int
	for v := range w.All() {
		seen = append(seen, v)
		if v == 1 {
			break
		}
	}
	require.Equal(t, []int{0, 1}, seen)
}

func TestMaxBy_FirstWinsOnTie(t *testing.T) {
	type sample struct {
		id int
		m  float64
	}
	w, err := NewWindow[sample](4)
	require.NoError(t, err)
	w.Push(sample{1, 2})
	w.Push(sample{2, 5})
	w.Push(sample{3, 5})
	w.Push(sample{4, 1})

	best, ok := MaxBy(w.All(), func(s sample) float64 { return s.m })
	require.True(t, ok)
	require.Equal(t, 2, best.id)
}

func TestMaxBy_Empty(t *testing.T) {
	w, err := NewWindow[float64](2)
	require.NoError(t, err)
	_, ok := MaxBy(w.All(), func(v float64) float64 { return v })
	require.False(t, ok)
}

func TestFold(t *testing.T) {
	w, err := NewWindow[int](3)
	require.NoError(t, err)
	for i := 1; i <= 5; i++ {
		w.Push(i)
	}
	require.Equal(t, 12, Fold(w.All(), 0, func(acc, v int) int { return acc + v }))
}

func BenchmarkWindow_Push(b *testing.B) {
	w, err := NewWindow[float64](64)
	require.NoError(b, err)
	for i := 0; i < b.N; i++ {
		w.Push(float64(i))
	}
}

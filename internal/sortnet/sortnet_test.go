package sortnet

import (
	"errors"
	"math/rand"
	"testing"
)

func checkSorted(t *testing.T, values []float32, index []int32, orig []float32) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i-1] > values[i] {
			t.Fatalf("not ascending at %d: %g > %g", i, values[i-1], values[i])
		}
		if values[i-1] == values[i] && index[i-1] >= index[i] {
			t.Fatalf("tie at %d not broken by original index: %d then %d", i, index[i-1], index[i])
		}
	}
	// scatter through the index array must recover the original layout
	scattered := make([]float32, len(values))
	seen := make([]bool, len(values))
	for i, v := range values {
		if index[i] < 0 || int(index[i]) >= len(values) {
			t.Fatalf("index[%d] = %d out of range", i, index[i])
		}
		if seen[index[i]] {
			t.Fatalf("index %d appears twice: not a permutation", index[i])
		}
		seen[index[i]] = true
		scattered[index[i]] = v
	}
	for i := range orig {
		if scattered[i] != orig[i] {
			t.Fatalf("scatter reconstruction differs at %d: %g != %g", i, scattered[i], orig[i])
		}
	}
}

func TestSort_AscendingAndScatter(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range []int{1, 2, 4, 16, 256, 4096, 16384} {
		values := make([]float32, n)
		for i := range values {
			values[i] = rng.Float32()
		}
		orig := append([]float32(nil), values...)
		index := Identity(n)

		var s Sorter
		if err := s.Sort(values, index); err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		checkSorted(t, values, index, orig)
	}
}

func TestSort_SmallBlockExercisesGlobalPasses(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	// BlockSize 8 with n up to 1024 forces array-wide mirror and shear
	// passes plus the in-block cascade fallback.
	for _, n := range []int{16, 64, 1024} {
		values := make([]float32, n)
		for i := range values {
			// heavy ties stress the deterministic ordering
			values[i] = float32(rng.Intn(7)) / 7
		}
		orig := append([]float32(nil), values...)
		index := Identity(n)

		s := Sorter{Workers: 4, BlockSize: 8}
		if err := s.Sort(values, index); err != nil {
			t.Fatal(err)
		}
		checkSorted(t, values, index, orig)
	}
}

func TestSort_TiesKeepOriginalOrder(t *testing.T) {
	// 2×2 single-channel case: [0,0,0,1] must keep ranks in original
	// flattened order for the equal values.
	values := []float32{0, 0, 0, 1}
	index := Identity(4)

	var s Sorter
	if err := s.Sort(values, index); err != nil {
		t.Fatal(err)
	}
	wantIdx := []int32{0, 1, 2, 3}
	for i := range wantIdx {
		if index[i] != wantIdx[i] {
			t.Fatalf("index = %v, want %v", index, wantIdx)
		}
	}
}

func TestSort_RejectsNonPowerOfTwo(t *testing.T) {
	for _, n := range []int{0, 3, 6, 100} {
		values := make([]float32, n)
		index := Identity(n)
		var s Sorter
		if err := s.Sort(values, index); !errors.Is(err, ErrNotPowerOfTwo) {
			t.Errorf("n=%d: error %v, want ErrNotPowerOfTwo", n, err)
		}
	}
}

func TestSort_RejectsLengthMismatch(t *testing.T) {
	var s Sorter
	if err := s.Sort(make([]float32, 4), Identity(2)); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestSort_AlreadySortedAndReversed(t *testing.T) {
	n := 512
	asc := make([]float32, n)
	desc := make([]float32, n)
	for i := 0; i < n; i++ {
		asc[i] = float32(i)
		desc[i] = float32(n - i)
	}
	for _, values := range [][]float32{asc, desc} {
		orig := append([]float32(nil), values...)
		index := Identity(n)
		s := Sorter{BlockSize: 32}
		if err := s.Sort(values, index); err != nil {
			t.Fatal(err)
		}
		checkSorted(t, values, index, orig)
	}
}

func BenchmarkSort_256x256(b *testing.B) {
	n := 256 * 256
	rng := rand.New(rand.NewSource(1))
	src := make([]float32, n)
	for i := range src {
		src[i] = rng.Float32()
	}
	values := make([]float32, n)
	var s Sorter

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		copy(values, src)
		index := Identity(n)
		b.StartTimer()
		if err := s.Sort(values, index); err != nil {
			b.Fatal(err)
		}
	}
}

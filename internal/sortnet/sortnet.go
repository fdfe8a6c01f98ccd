// Package sortnet implements the parallel rank sort underlying
// gaussianization: an ascending bitonic sorting network over
// (value, original-index) pairs.
//
// The network is a fixed, data-independent sequence of compare-exchanges
// in log2(N) major stages of doubling group size h. Each stage runs one
// mirror pass (compare offsets m and h−1−m within every group of h),
// then a cascade of shear passes at group sizes h/2, h/4, ..., 2
// (compare offsets m and m+gs/2 within every group of gs). Every
// compare-exchange inside one pass is independent, so passes are run as
// parallel loops; the join at the end of each loop is the barrier the
// network's correctness depends on — later passes compare values that an
// earlier pass may have swapped anywhere in the array.
//
// For locality, blocks of BlockSize elements are first sorted entirely
// in-block; stages with h above the block size run array-wide passes and
// drop back into per-block cascades once the shear size fits a block.
//
// Ties are broken by original flattened index, so the permutation is
// deterministic for any input.
package sortnet

import (
	"errors"
	"fmt"

	"github.com/AnyUserName/stochtex-cli/internal/parallel"
)

// DefaultBlockSize is the in-block network size. 2048 float32 values plus
// indices stay comfortably inside L2 while giving Each enough blocks to
// spread.
const DefaultBlockSize = 2048

// ErrNotPowerOfTwo reports a length the network cannot handle. The
// power-of-two requirement is an algorithmic precondition of the bitonic
// network, not an incidental limitation.
var ErrNotPowerOfTwo = errors.New("sortnet: length must be a power of two")

// Sorter sorts channel arrays. The zero value sorts with DefaultBlockSize
// and NumCPU workers.
type Sorter struct {
	Workers   int
	BlockSize int // power of two; tests shrink it to exercise global passes
}

// Identity returns the identity permutation 0..n-1 as the initial index
// array for a channel.
func Identity(n int) []int32 {
	idx := make([]int32, n)
	for i := range idx {
		idx[i] = int32(i)
	}
	return idx
}

// Sort sorts values ascending in place and permutes index in lock step.
// After Sort, index is a permutation of 0..N-1 with
// original[index[i]] == values[i].
func (s *Sorter) Sort(values []float32, index []int32) error {
	n := len(values)
	if len(index) != n {
		return fmt.Errorf("sortnet: value/index length mismatch: %d vs %d", n, len(index))
	}
	if n == 0 || n&(n-1) != 0 {
		return fmt.Errorf("%w: got %d", ErrNotPowerOfTwo, n)
	}
	if n == 1 {
		return nil
	}

	bs := s.BlockSize
	if bs <= 0 {
		bs = DefaultBlockSize
	}
	if bs&(bs-1) != 0 {
		return fmt.Errorf("%w: block size %d", ErrNotPowerOfTwo, bs)
	}
	if bs > n {
		bs = n
	}

	// Stage 1: sort every block completely with the in-block network.
	s.eachBlock(n, bs, func(lo int) {
		sortSpan(values, index, lo, bs)
	})

	// Stages above the block size: array-wide mirror, array-wide shears
	// while the group is larger than a block, then per-block cascades.
	for h := bs << 1; h <= n; h <<= 1 {
		s.mirrorPass(values, index, n, h)
		for gs := h >> 1; gs > bs; gs >>= 1 {
			s.shearPass(values, index, n, gs)
		}
		s.eachBlock(n, bs, func(lo int) {
			shearCascade(values, index, lo, bs)
		})
	}
	return nil
}

// mirrorPass merges pairs of sorted runs of h/2: within each group of h,
// compare-exchange offset m against offset h−1−m. One parallel loop over
// all N/2 pairs; the loop join is the stage barrier.
func (s *Sorter) mirrorPass(values []float32, index []int32, n, h int) {
	half := h >> 1
	parallel.For(n>>1, s.Workers, func(start, end int) {
		for k := start; k < end; k++ {
			g := (k / half) * h
			m := k % half
			compareExchange(values, index, g+m, g+h-1-m)
		}
	})
}

// shearPass compares offset m against m+gs/2 within every group of gs.
func (s *Sorter) shearPass(values []float32, index []int32, n, gs int) {
	half := gs >> 1
	parallel.For(n>>1, s.Workers, func(start, end int) {
		for k := start; k < end; k++ {
			g := (k / half) * gs
			m := k % half
			compareExchange(values, index, g+m, g+m+half)
		}
	})
}

// eachBlock runs fn for every aligned block of bs elements, one block per
// task. Blocks are independent within a pass, and the join is the barrier.
func (s *Sorter) eachBlock(n, bs int, fn func(lo int)) {
	blocks := n / bs
	parallel.Each(blocks, s.Workers, func(b int) {
		fn(b * bs)
	})
}

// sortSpan runs the full bitonic network on [lo, lo+n).
func sortSpan(values []float32, index []int32, lo, n int) {
	for h := 2; h <= n; h <<= 1 {
		mirrorSpan(values, index, lo, n, h)
		for gs := h >> 1; gs >= 2; gs >>= 1 {
			shearSpan(values, index, lo, n, gs)
		}
	}
}

// shearCascade runs the tail of a major stage inside one block: shear
// passes at bs, bs/2, ..., 2.
func shearCascade(values []float32, index []int32, lo, bs int) {
	for gs := bs; gs >= 2; gs >>= 1 {
		shearSpan(values, index, lo, bs, gs)
	}
}

func mirrorSpan(values []float32, index []int32, lo, n, h int) {
	for g := lo; g < lo+n; g += h {
		for m := 0; m < h>>1; m++ {
			compareExchange(values, index, g+m, g+h-1-m)
		}
	}
}

func shearSpan(values []float32, index []int32, lo, n, gs int) {
	half := gs >> 1
	for g := lo; g < lo+n; g += gs {
		for m := 0; m < half; m++ {
			compareExchange(values, index, g+m, g+m+half)
		}
	}
}

// compareExchange swaps the pair at a and b when out of ascending order.
// Equal values order by original index, which keeps the whole network
// deterministic.
func compareExchange(values []float32, index []int32, a, b int) {
	if values[a] > values[b] || (values[a] == values[b] && index[a] > index[b]) {
		values[a], values[b] = values[b], values[a]
		index[a], index[b] = index[b], index[a]
	}
}

package shapes

import "iter"

// Iter yields every index of the shape in row-major order (last axis changes fastest).
//
// The yielded slice is reused between iterations: clone it if it needs to be kept.
// A scalar yields one empty index, and a shape with any zero dimension yields nothing.
func (s Shape) Iter() iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if !s.Ok() {
			return
		}
		rank := s.Rank()
		for _, dim := range s.Dimensions {
			if dim == 0 {
				return
			}
		}
		indices := make([]int, rank)
		for {
			if !yield(indices) {
				return
			}
			axis := rank - 1
			for ; axis >= 0; axis-- {
				indices[axis]++
				if indices[axis] < s.Dimensions[axis] {
					break
				}
				indices[axis] = 0
			}
			if axis < 0 {
				return
			}
		}
	}
}

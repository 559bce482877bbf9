package containers

// SmallVec is a growable list that keeps its first elements in a fixed
// inline array and only spills to the heap once that is exhausted.
// Create one with NewSmallVec.
type SmallVec[T any] struct {
	inline []T
	heap   []T
	// heap array from an earlier batch, reused on the next spill
	spare   []T
	spilled bool
}

// NewSmallVec creates a SmallVec with the given inline capacity.
func NewSmallVec[T any](inlineCap int) *SmallVec[T] {
	if inlineCap < 0 {
		inlineCap = 0
	}
	return &SmallVec[T]{
		inline: make([]T, 0, inlineCap),
	}
}

// Push appends v, moving the contents to the heap on the first overflow.
func (sv *SmallVec[T]) Push(v T) {
	if !sv.spilled {
		if len(sv.inline) < cap(sv.inline) {
			sv.inline = append(sv.inline, v)
			return
		}
		sv.spill()
	}
	sv.heap = append(sv.heap, v)
}

func (sv *SmallVec[T]) spill() {
	if cap(sv.spare) > len(sv.inline) {
		sv.heap = sv.spare[:0]
	} else {
		sv.heap = make([]T, 0, 2*cap(sv.inline)+1)
	}
	sv.spare = nil
	sv.heap = append(sv.heap, sv.inline...)
	sv.spilled = true
}

// Len returns the number of stored elements.
func (sv *SmallVec[T]) Len() int {
	if sv.spilled {
		return len(sv.heap)
	}
	return len(sv.inline)
}

// Spilled reports whether the elements live on the heap.
func (sv *SmallVec[T]) Spilled() bool {
	return sv.spilled
}

// At returns the element at index i.
func (sv *SmallVec[T]) At(i int) T {
	return sv.Slice()[i]
}

// Slice returns a view of the stored elements. The view is only valid until
// the next Push or Reset.
func (sv *SmallVec[T]) Slice() []T {
	if sv.spilled {
		return sv.heap
	}
	return sv.inline
}

// Reset empties the vector. Both backing arrays are kept so the next batch
// of the same size does not allocate.
func (sv *SmallVec[T]) Reset() {
	clear(sv.inline)
	sv.inline = sv.inline[:0]
	if sv.spilled {
		clear(sv.heap)
		sv.spare = sv.heap[:0]
		sv.heap = nil
		sv.spilled = false
	}
}

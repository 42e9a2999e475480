// Package history provides the bounded snapshot deque backing undo/redo.
package history

// Ring is a fixed-capacity double-ended queue. It is a value type: every
// mutating method returns a new Ring and leaves the receiver untouched, so
// states that share a Ring can diverge safely. When a push exceeds the
// capacity the element at the opposite end is dropped.
type Ring[T any] struct {
	buf  []T
	head int
	size int
}

// New returns an empty ring holding at most capacity elements.
func New[T any](capacity int) Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return Ring[T]{buf: make([]T, capacity)}
}

// Len returns the number of stored elements.
func (r Ring[T]) Len() int { return r.size }

// Cap returns the capacity.
func (r Ring[T]) Cap() int { return len(r.buf) }

// Empty reports whether the ring holds no elements.
func (r Ring[T]) Empty() bool { return r.size == 0 }

// At returns the element at position idx, counting from the front.
func (r Ring[T]) At(idx int) (T, bool) {
	var zero T
	if idx < 0 || idx >= r.size {
		return zero, false
	}
	return r.buf[r.index(idx)], true
}

// Front returns the first element.
func (r Ring[T]) Front() (T, bool) { return r.At(0) }

// Back returns the last element.
func (r Ring[T]) Back() (T, bool) { return r.At(r.size - 1) }

// PushBack appends v, dropping the front element when full.
func (r Ring[T]) PushBack(v T) Ring[T] {
	out := r.clone()
	if out.size == len(out.buf) {
		out.buf[out.head] = v
		out.head = (out.head + 1) % len(out.buf)
		return out
	}
	out.buf[out.index(out.size)] = v
	out.size++
	return out
}

// PushFront prepends v, dropping the back element when full.
func (r Ring[T]) PushFront(v T) Ring[T] {
	out := r.clone()
	out.head = (out.head - 1 + len(out.buf)) % len(out.buf)
	out.buf[out.head] = v
	if out.size < len(out.buf) {
		out.size++
	}
	return out
}

// PopBack removes and returns the last element.
func (r Ring[T]) PopBack() (T, Ring[T], bool) {
	var zero T
	if r.size == 0 {
		return zero, r, false
	}
	out := r.clone()
	idx := out.index(out.size - 1)
	v := out.buf[idx]
	out.buf[idx] = zero
	out.size--
	return v, out, true
}

// PopFront removes and returns the first element.
func (r Ring[T]) PopFront() (T, Ring[T], bool) {
	var zero T
	if r.size == 0 {
		return zero, r, false
	}
	out := r.clone()
	v := out.buf[out.head]
	out.buf[out.head] = zero
	out.head = (out.head + 1) % len(out.buf)
	out.size--
	return v, out, true
}

// Clear returns an empty ring with the same capacity.
func (r Ring[T]) Clear() Ring[T] {
	return New[T](r.Cap())
}

// Slice returns the elements front to back.
func (r Ring[T]) Slice() []T {
	out := make([]T, r.size)
	for i := range out {
		out[i] = r.buf[r.index(i)]
	}
	return out
}

func (r Ring[T]) index(offset int) int {
	return (r.head + offset) % len(r.buf)
}

// clone copies the backing array, bounded by the capacity, so a pushed or
// popped Ring leaves its receiver intact. The zero Ring gets a single slot so
// the methods stay total.
func (r Ring[T]) clone() Ring[T] {
	if len(r.buf) == 0 {
		return New[T](1)
	}
	buf := make([]T, len(r.buf))
	copy(buf, r.buf)
	return Ring[T]{buf: buf, head: r.head, size: r.size}
}

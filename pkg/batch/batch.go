// Package batch splits work into bounded chunks.
package batch

// Split partitions a slice into consecutive chunks of at most size elements.
// Chunks share memory with the input. A non-positive size returns the
// whole slice as one chunk.
func Split[T any](s []T, size int) [][]T {
	if len(s) == 0 {
		return nil
	}
	if size <= 0 || size >= len(s) {
		return [][]T{s}
	}
	res := make([][]T, 0, (len(s)+size-1)/size)
	for i := 0; i < len(s); i += size {
		end := min(i+size, len(s))
		res = append(res, s[i:end:end])
	}
	return res
}

// Buffer collects items and hands them to a flush function every time
// it reaches its size.
type Buffer[T any] struct {
	size  int
	items []T
	flush func([]T) error
}

// NewBuffer creates a Buffer that calls flush with at most size items.
func NewBuffer[T any](size int, flush func([]T) error) *Buffer[T] {
	if size <= 0 {
		size = 1
	}
	return &Buffer[T]{
		size:  size,
		items: make([]T, 0, size),
		flush: flush,
	}
}

// Add appends an item, flushing when the buffer is full.
func (b *Buffer[T]) Add(item T) error {
	b.items = append(b.items, item)
	if len(b.items) < b.size {
		return nil
	}
	return b.Flush()
}

// Flush sends the remaining items to the flush function.
func (b *Buffer[T]) Flush() error {
	if len(b.items) == 0 {
		return nil
	}
	items := b.items
	b.items = make([]T, 0, b.size)
	return b.flush(items)
}

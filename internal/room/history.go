package room

// HistoryLog is a fixed-capacity FIFO. Appending to a full log evicts the oldest entry.
type HistoryLog[T any] struct {
	data  []T
	head  int
	count int
}

func NewHistoryLog[T any](capacity int) *HistoryLog[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &HistoryLog[T]{data: make([]T, capacity)}
}

// Append adds v as the newest entry.
func (l *HistoryLog[T]) Append(v T) {
	tail := (l.head + l.count) % len(l.data)
	l.data[tail] = v

	if l.count == len(l.data) {
		l.head = (l.head + 1) % len(l.data)
		return
	}
	l.count++
}

// Entries returns a copy of the log, oldest first.
func (l *HistoryLog[T]) Entries() []T {
	out := make([]T, l.count)
	for i := range out {
		out[i] = l.data[(l.head+i)%len(l.data)]
	}
	return out
}

func (l *HistoryLog[T]) Len() int {
	return l.count
}

func (l *HistoryLog[T]) Capacity() int {
	return len(l.data)
}

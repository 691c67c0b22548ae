// Package fifo implements the bounded first-in first-out queues that sit
// between the register interface and the serial paths.
package fifo

import "errors"

// ErrFull is returned by Push when the queue is at capacity.
var ErrFull = errors.New("fifo: queue full")

// Entry flags carried alongside a data word.
const (
	FlagFraming uint8 = 1 << iota
	FlagParity
)

// Entry is one queued data word plus its error tags.
type Entry struct {
	Data  uint16
	Flags uint8
}

// Queue is a fixed-capacity ring buffer. It is not safe for concurrent use;
// the owning core serialises access.
type Queue struct {
	buf  []Entry
	head int
	n    int
}

// New returns an empty queue holding at most capacity entries. A capacity
// below one is raised to one.
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{buf: make([]Entry, capacity)}
}

// Cap returns the capacity.
func (q *Queue) Cap() int { return len(q.buf) }

// Len returns the number of queued entries.
func (q *Queue) Len() int { return q.n }

// Empty reports whether the queue holds nothing.
func (q *Queue) Empty() bool { return q.n == 0 }

// Full reports whether the queue is at capacity.
func (q *Queue) Full() bool { return q.n == len(q.buf) }

// Push appends e. A full queue is left untouched and ErrFull returned.
func (q *Queue) Push(e Entry) error {
	if q.Full() {
		return ErrFull
	}
	q.buf[(q.head+q.n)%len(q.buf)] = e
	q.n++
	return nil
}

// Pop removes and returns the oldest entry.
func (q *Queue) Pop() (Entry, bool) {
	if q.n == 0 {
		return Entry{}, false
	}
	e := q.buf[q.head]
	q.buf[q.head] = Entry{}
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return e, true
}

// Peek returns the oldest entry without removing it.
func (q *Queue) Peek() (Entry, bool) {
	if q.n == 0 {
		return Entry{}, false
	}
	return q.buf[q.head], true
}

// Reset discards every entry.
func (q *Queue) Reset() {
	for i := range q.buf {
		q.buf[i] = Entry{}
	}
	q.head = 0
	q.n = 0
}

// Snapshot copies the queued entries oldest first.
func (q *Queue) Snapshot() []Entry {
	out := make([]Entry, q.n)
	for i := 0; i < q.n; i++ {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}

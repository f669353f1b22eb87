package vm

// queue is a FIFO of int64 values backed by a slice with a moving head.
type queue struct {
	buf  []int64
	head int
}

func (q *queue) push(v int64) {
	if q.head > 0 && q.head == len(q.buf) {
		q.buf = q.buf[:0]
		q.head = 0
	}
	q.buf = append(q.buf, v)
}

func (q *queue) pop() (int64, bool) {
	if q.head >= len(q.buf) {
		return 0, false
	}
	v := q.buf[q.head]
	q.head++
	return v, true
}

func (q *queue) len() int {
	return len(q.buf) - q.head
}

// drain returns all pending values and empties the queue.
func (q *queue) drain() []int64 {
	if q.len() == 0 {
		return nil
	}
	out := make([]int64, q.len())
	copy(out, q.buf[q.head:])
	q.buf = q.buf[:0]
	q.head = 0
	return out
}

func (q queue) clone() queue {
	if q.len() == 0 {
		return queue{}
	}
	buf := make([]int64, q.len())
	copy(buf, q.buf[q.head:])
	return queue{buf: buf}
}

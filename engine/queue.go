package engine

// jobQueue is a bounded FIFO. It is not synchronized on its own: every access
// happens with the server dispatch mutex held.
type jobQueue struct {
	items []*Job
	limit int
	// signal wakes the dispatch loop (buffered, size 1)
	signal chan struct{}
}

func newJobQueue(limit int) *jobQueue {
	return &jobQueue{
		items:  make([]*Job, 0, 16),
		limit:  limit,
		signal: make(chan struct{}, 1),
	}
}

// push appends the job and wakes the dispatch loop. Returns false when the queue is full.
func (q *jobQueue) push(j *Job) bool {
	if len(q.items) >= q.limit {
		return false
	}

	q.items = append(q.items, j)

	// coalesce wake-ups, the loop drains everything it finds
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// pop removes the front job, nil when empty
func (q *jobQueue) pop() *Job {
	if len(q.items) == 0 {
		return nil
	}

	j := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]

	return j
}

func (q *jobQueue) len() int {
	return len(q.items)
}

package playback

import (
	"sync"

	"github.com/shehabattia96/carry-sound/internal/pcm"
)

// Queue is a bounded FIFO of frame blocks with drop-oldest overflow
// semantics: under sustained overflow the oldest audio is lost so
// playback stays close to live. The ingest loop is the sole writer,
// the render engine the sole reader. Both sides hold the lock only for
// O(1) index work, so TryPop never delays the render callback.
type Queue struct {
	mu     sync.Mutex
	blocks []pcm.FrameBlock // ring storage, len == capacity
	head   int              // index of the oldest block
	count  int

	evicted uint64
}

// NewQueue creates a queue holding at most capacity blocks.
// Capacity must be at least 1.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{blocks: make([]pcm.FrameBlock, capacity)}
}

// Push appends a block, evicting the oldest block first when the queue
// is full. It reports whether an eviction took place. The incoming
// block is never the one evicted.
func (q *Queue) Push(b pcm.FrameBlock) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	evicted := false
	if q.count == len(q.blocks) {
		q.blocks[q.head] = pcm.FrameBlock{}
		q.head = (q.head + 1) % len(q.blocks)
		q.count--
		q.evicted++
		evicted = true
	}

	tail := (q.head + q.count) % len(q.blocks)
	q.blocks[tail] = b
	q.count++
	return evicted
}

// TryPop removes and returns the oldest block. It never blocks: an
// empty queue returns ok == false immediately so the caller can fall
// through to its silence path.
func (q *Queue) TryPop() (pcm.FrameBlock, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return pcm.FrameBlock{}, false
	}

	b := q.blocks[q.head]
	q.blocks[q.head] = pcm.FrameBlock{}
	q.head = (q.head + 1) % len(q.blocks)
	q.count--
	return b, true
}

// Len returns the current number of queued blocks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Evicted returns the total number of blocks dropped to admit newer ones.
func (q *Queue) Evicted() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.evicted
}

package playback

import (
	"testing"

	"github.com/shehabattia96/carry-sound/internal/pcm"
)

func block(channels int, values ...float32) pcm.FrameBlock {
	return pcm.FrameBlock{Samples: values, Channels: channels}
}

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue(4)

	q.Push(block(1, 1))
	q.Push(block(1, 2))
	q.Push(block(1, 3))

	if q.Len() != 3 {
		t.Fatalf("Expected 3 queued blocks, got %d", q.Len())
	}

	for _, want := range []float32{1, 2, 3} {
		b, ok := q.TryPop()
		if !ok {
			t.Fatalf("Expected a block, queue empty")
		}
		if b.Samples[0] != want {
			t.Errorf("Expected block %f, got %f", want, b.Samples[0])
		}
	}
}

func TestQueueTryPopEmptyReturnsImmediately(t *testing.T) {
	q := NewQueue(2)

	if _, ok := q.TryPop(); ok {
		t.Error("Expected ok=false on empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", q.Len())
	}
}

func TestQueueEvictsOldestOnOverflow(t *testing.T) {
	q := NewQueue(3)

	for i := 1; i <= 3; i++ {
		if evicted := q.Push(block(1, float32(i))); evicted {
			t.Errorf("Unexpected eviction while filling, block %d", i)
		}
	}

	// Overflow twice: blocks 1 and 2 must go, never the incoming one.
	if evicted := q.Push(block(1, 4)); !evicted {
		t.Error("Expected eviction on overflow")
	}
	if evicted := q.Push(block(1, 5)); !evicted {
		t.Error("Expected eviction on overflow")
	}

	if q.Len() != 3 {
		t.Fatalf("Expected queue length capped at 3, got %d", q.Len())
	}
	if q.Evicted() != 2 {
		t.Errorf("Expected 2 evictions, got %d", q.Evicted())
	}

	for _, want := range []float32{3, 4, 5} {
		b, ok := q.TryPop()
		if !ok {
			t.Fatalf("Expected a block, queue empty")
		}
		if b.Samples[0] != want {
			t.Errorf("Expected block %f, got %f", want, b.Samples[0])
		}
	}
}

func TestQueueLengthNeverExceedsCapacity(t *testing.T) {
	q := NewQueue(5)

	for i := 0; i < 100; i++ {
		q.Push(block(1, float32(i)))
		if q.Len() > 5 {
			t.Fatalf("Queue length %d exceeds capacity 5 after push %d", q.Len(), i)
		}
	}

	if q.Evicted() != 95 {
		t.Errorf("Expected 95 evictions, got %d", q.Evicted())
	}
}

func TestQueueMinimumCapacity(t *testing.T) {
	q := NewQueue(0)

	q.Push(block(1, 1))
	q.Push(block(1, 2))

	b, ok := q.TryPop()
	if !ok {
		t.Fatal("Expected a block")
	}
	if b.Samples[0] != 2 {
		t.Errorf("Expected newest block 2, got %f", b.Samples[0])
	}
}

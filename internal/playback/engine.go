package playback

import (
	"sync/atomic"

	"github.com/shehabattia96/carry-sound/internal/pcm"
)

// Engine drains the queue from the audio device's output callback. It
// owns the carry-over slot: the tail of a block that did not fit in a
// previous period, held until the next invocation. The carry-over is
// touched only from the callback context and needs no locking.
//
// Render must return within the period budget, so it only copies into
// the device-provided buffer; it never allocates, logs or waits.
type Engine struct {
	queue    *Queue
	channels int

	carry    pcm.FrameBlock
	carryPos int // frames of carry already consumed

	underruns atomic.Uint64
	faults    atomic.Uint64
}

// EngineStats is a snapshot of the engine's counters, read by the
// shutdown and monitoring paths.
type EngineStats struct {
	Underruns    uint64 `json:"underruns"`
	RenderFaults uint64 `json:"render_faults"`
	QueueDepth   int    `json:"queue_depth"`
}

// NewEngine creates a render engine reading from q with the given
// interleaved channel count.
func NewEngine(q *Queue, channels int) *Engine {
	return &Engine{queue: q, channels: channels}
}

// Render fills out with exactly len(out)/channels frames of audio,
// padding with silence when the carry-over and queue cannot cover the
// period. An invocation serviced with no real data at all counts as an
// under-run; a partial fill does not. A fault anywhere in the render
// path zeroes the whole buffer and returns normally so the device
// never sees garbage or a propagated panic.
func (e *Engine) Render(out []float32) {
	defer func() {
		if r := recover(); r != nil {
			for i := range out {
				out[i] = 0
			}
			e.faults.Add(1)
		}
	}()

	frames := len(out) / e.channels
	written := 0

	// Carry-over from the previous period goes first.
	if e.carryPos < e.carry.Frames() {
		n := e.copyFrames(out, written, e.carry, e.carryPos, frames)
		written += n
		e.carryPos += n
		if e.carryPos >= e.carry.Frames() {
			e.carry = pcm.FrameBlock{}
			e.carryPos = 0
		}
	}

	// Then whole blocks from the queue. A block is split at most once;
	// its tail becomes the new carry-over and the loop ends.
	for written < frames {
		block, ok := e.queue.TryPop()
		if !ok {
			break
		}
		n := e.copyFrames(out, written, block, 0, frames)
		written += n
		if n < block.Frames() {
			e.carry = block
			e.carryPos = n
			break
		}
	}

	if written < frames {
		for i := written * e.channels; i < len(out); i++ {
			out[i] = 0
		}
		if written == 0 {
			e.underruns.Add(1)
		}
	}
}

// copyFrames copies up to limit-written frames of src starting at frame
// from into out at frame written, returning the frame count copied.
func (e *Engine) copyFrames(out []float32, written int, src pcm.FrameBlock, from, limit int) int {
	n := src.Frames() - from
	if room := limit - written; n > room {
		n = room
	}
	copy(out[written*e.channels:], src.Samples[from*e.channels:(from+n)*e.channels])
	return n
}

// Underruns returns the number of periods serviced with no real data.
func (e *Engine) Underruns() uint64 {
	return e.underruns.Load()
}

// Stats returns a snapshot of the engine counters and queue depth.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Underruns:    e.underruns.Load(),
		RenderFaults: e.faults.Load(),
		QueueDepth:   e.queue.Len(),
	}
}

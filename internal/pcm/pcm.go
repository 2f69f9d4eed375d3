package pcm

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// SampleSize is the wire size of a single sample (32-bit IEEE float).
	SampleSize = 4

	// MaxDatagramSize is the largest UDP payload the protocol can carry.
	MaxDatagramSize = 65507
)

// FrameBlock is a contiguous run of interleaved audio frames produced by
// one received datagram or one capture period. Samples holds
// Frames()*Channels float32 values and is not modified after creation;
// ownership transfers to the consumer when the block is enqueued.
type FrameBlock struct {
	Samples  []float32
	Channels int
}

// Frames returns the number of frames (one sample per channel) in the block.
func (b FrameBlock) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// DecodeResult reports what Decode did with a payload.
type DecodeResult struct {
	Block     FrameBlock
	Truncated int // payload bytes dropped to reach a whole number of frames
}

// Decode interprets a datagram payload as interleaved little-endian
// float32 samples and reshapes it into a FrameBlock with the given
// channel count. Payloads whose length is not a multiple of
// channels*SampleSize are decoded best-effort: the largest valid prefix
// is kept and the remainder dropped, reported via Truncated. An empty
// or sub-frame payload yields an empty block.
func Decode(payload []byte, channels int) (DecodeResult, error) {
	if channels < 1 {
		return DecodeResult{}, fmt.Errorf("invalid channel count: %d", channels)
	}

	frameBytes := channels * SampleSize
	frames := len(payload) / frameBytes
	usable := frames * frameBytes

	samples := make([]float32, frames*channels)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(payload[i*SampleSize:])
		samples[i] = math.Float32frombits(bits)
	}

	return DecodeResult{
		Block:     FrameBlock{Samples: samples, Channels: channels},
		Truncated: len(payload) - usable,
	}, nil
}

// Encode serializes interleaved samples to their exact wire
// representation. The result length is len(samples)*SampleSize.
func Encode(samples []float32) []byte {
	payload := make([]byte, len(samples)*SampleSize)
	EncodeTo(payload, samples)
	return payload
}

// EncodeTo serializes samples into dst, which must hold at least
// len(samples)*SampleSize bytes, and returns the number of bytes
// written. It performs no allocation, so the sender can reuse one
// buffer across capture periods.
func EncodeTo(dst []byte, samples []float32) int {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(dst[i*SampleSize:], math.Float32bits(s))
	}
	return len(samples) * SampleSize
}

// DatagramSize returns the payload size in bytes for a capture period
// of chunkSize frames.
func DatagramSize(chunkSize, channels int) int {
	return chunkSize * channels * SampleSize
}

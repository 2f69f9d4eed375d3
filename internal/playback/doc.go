// Package playback implements the receiver's producer/consumer core: a
// bounded drop-oldest queue of decoded frame blocks written by the
// network ingest loop, and a render engine that services the real-time
// audio output callback from that queue without ever blocking it.
package playback

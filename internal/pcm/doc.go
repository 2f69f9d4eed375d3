// Package pcm implements the raw float32 wire format shared by the
// sender and receiver. A datagram payload is a flat array of
// little-endian 32-bit IEEE floats, interleaved by channel, with no
// header, sequence number or length prefix.
package pcm

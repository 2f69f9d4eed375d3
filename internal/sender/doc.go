// Package sender implements the capture-and-transmit side of the
// bridge: every capture period is serialized to its raw byte
// representation and sent immediately as one best-effort datagram.
// There is no buffering, retry or ordering on this side.
package sender

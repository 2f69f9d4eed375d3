// Package receiver implements the network ingest side of the bridge: a
// UDP listener that decodes raw PCM datagrams into frame blocks and
// appends them to the playback queue, independent of playback timing.
package receiver
